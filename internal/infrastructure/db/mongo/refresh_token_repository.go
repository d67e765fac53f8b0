package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

const refreshTokenCollection = "refresh_tokens"

// RefreshTokenRepository persists the single live refresh token per account.
// A unique index on account_id backs the one-per-account invariant.
type RefreshTokenRepository struct {
	coll *mongo.Collection
	ttl  time.Duration
}

func NewRefreshTokenRepository(db *mongo.Database, ttl time.Duration) *RefreshTokenRepository {
	if ttl <= 0 {
		ttl = domain.DefaultRefreshTokenTTL
	}
	return &RefreshTokenRepository{coll: db.Collection(refreshTokenCollection), ttl: ttl}
}

type refreshTokenDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Value     string             `bson:"value"`
	AccountID string             `bson:"account_id"`
	ExpiresAt int64              `bson:"expires_at"`
}

// Replace swaps the account's refresh token for a fresh one in a single
// upsert keyed on account_id, so concurrent logins cannot leave two live
// tokens.
func (r *RefreshTokenRepository) Replace(ctx context.Context, accountID string) (*domain.RefreshToken, error) {
	expiresAt := time.Now().UTC().Add(r.ttl)
	doc := refreshTokenDoc{
		Value:     uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: expiresAt.Unix(),
	}

	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"account_id": accountID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("replace refresh token: %w", err)
	}

	token := &domain.RefreshToken{
		Value:     doc.Value,
		AccountID: accountID,
		ExpiresAt: expiresAt,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		token.ID = oid.Hex()
	} else {
		// Replaced an existing row; fetch back for the id.
		stored, findErr := r.FindByValue(ctx, doc.Value)
		if findErr != nil {
			return nil, findErr
		}
		token.ID = stored.ID
	}
	return token, nil
}

func (r *RefreshTokenRepository) FindByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	var doc refreshTokenDoc
	if err := r.coll.FindOne(ctx, bson.M{"value": value}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &domain.RefreshToken{
		ID:        doc.ID.Hex(),
		Value:     doc.Value,
		AccountID: doc.AccountID,
		ExpiresAt: unixToTime(doc.ExpiresAt),
	}, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"account_id": accountID}); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	return nil
}
