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

const (
	activationTokenCollection = "activation_tokens"
	resetTokenCollection      = "password_reset_tokens"
)

// OneTimeTokenRepository backs both the activation and the password-reset
// token stores; the two differ only in collection and lifetime. A unique
// index on account_id keeps one pending token per account.
type OneTimeTokenRepository struct {
	coll *mongo.Collection
	ttl  time.Duration
}

// NewActivationTokenRepository returns the activation-token store.
func NewActivationTokenRepository(db *mongo.Database, ttl time.Duration) *OneTimeTokenRepository {
	if ttl <= 0 {
		ttl = domain.DefaultActivationTokenTTL
	}
	return &OneTimeTokenRepository{coll: db.Collection(activationTokenCollection), ttl: ttl}
}

// NewPasswordResetTokenRepository returns the password-reset-token store.
func NewPasswordResetTokenRepository(db *mongo.Database, ttl time.Duration) *OneTimeTokenRepository {
	if ttl <= 0 {
		ttl = domain.DefaultResetTokenTTL
	}
	return &OneTimeTokenRepository{coll: db.Collection(resetTokenCollection), ttl: ttl}
}

type oneTimeTokenDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Value     string             `bson:"value"`
	AccountID string             `bson:"account_id"`
	ExpiresAt int64              `bson:"expires_at"`
}

// Issue replaces any pending token for the account with a freshly generated
// one in a single upsert.
func (r *OneTimeTokenRepository) Issue(ctx context.Context, accountID string) (*domain.OneTimeToken, error) {
	expiresAt := time.Now().UTC().Add(r.ttl)
	doc := oneTimeTokenDoc{
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
		return nil, fmt.Errorf("issue token: %w", err)
	}

	token := &domain.OneTimeToken{
		Value:     doc.Value,
		AccountID: accountID,
		ExpiresAt: expiresAt,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		token.ID = oid.Hex()
	} else {
		stored, findErr := r.FindByValue(ctx, doc.Value)
		if findErr != nil {
			return nil, findErr
		}
		token.ID = stored.ID
	}
	return token, nil
}

func (r *OneTimeTokenRepository) FindByValue(ctx context.Context, value string) (*domain.OneTimeToken, error) {
	var doc oneTimeTokenDoc
	if err := r.coll.FindOne(ctx, bson.M{"value": value}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &domain.OneTimeToken{
		ID:        doc.ID.Hex(),
		Value:     doc.Value,
		AccountID: doc.AccountID,
		ExpiresAt: unixToTime(doc.ExpiresAt),
	}, nil
}

func (r *OneTimeTokenRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
