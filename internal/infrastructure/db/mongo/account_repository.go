package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository is the MongoDB-backed credential store.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type accountDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Email             string             `bson:"email"`
	PasswordHash      string             `bson:"password_hash"`
	Authorities       []string           `bson:"authorities"`
	Active            bool               `bson:"active"`
	Locked            bool               `bson:"locked"`
	Deleted           bool               `bson:"deleted"`
	FailedAttempts    int                `bson:"failed_attempts"`
	PasswordChangedAt int64              `bson:"password_changed_at,omitempty"`
	CreatedAt         int64              `bson:"created_at"`
	UpdatedAt         int64              `bson:"updated_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := accountDoc{
		Email:          account.Email,
		PasswordHash:   account.PasswordHash,
		Authorities:    account.Authorities,
		Active:         account.Active,
		Locked:         account.Locked,
		Deleted:        account.Deleted,
		FailedAttempts: account.FailedAttempts,
		CreatedAt:      account.CreatedAt.Unix(),
		UpdatedAt:      account.UpdatedAt.Unix(),
	}
	if account.PasswordChangedAt != nil {
		doc.PasswordChangedAt = account.PasswordChangedAt.Unix()
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email, "deleted": false})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "deleted": false})
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

// RecordFailedAttempt increments the counter with a single conditional update
// so concurrent bad logins cannot under-count or push the counter past the
// lockout threshold. A second conditional update performs the lock transition
// exactly once, when the counter reaches the threshold.
func (r *AccountRepository) RecordFailedAttempt(ctx context.Context, id string) (int, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, false, domain.ErrNotFound
	}

	var doc accountDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{
			"_id":             oid,
			"locked":          false,
			"failed_attempts": bson.M{"$lt": domain.MaxFailedAttempts},
		},
		bson.M{
			"$inc": bson.M{"failed_attempts": 1},
			"$set": bson.M{"updated_at": time.Now().UTC().Unix()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Lost the race: another request already locked the account or
			// saturated the counter.
			return domain.MaxFailedAttempts, false, nil
		}
		return 0, false, fmt.Errorf("increment failed attempts: %w", err)
	}

	if doc.FailedAttempts < domain.MaxFailedAttempts {
		return doc.FailedAttempts, false, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "locked": false, "failed_attempts": bson.M{"$gte": domain.MaxFailedAttempts}},
		bson.M{"$set": bson.M{"locked": true, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return doc.FailedAttempts, false, fmt.Errorf("lock account: %w", err)
	}
	return doc.FailedAttempts, res.ModifiedCount == 1, nil
}

func (r *AccountRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{"failed_attempts": 0})
}

func (r *AccountRepository) SetActive(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{"active": true})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	return r.setFields(ctx, id, bson.M{
		"password_hash":       passwordHash,
		"password_changed_at": changedAt.Unix(),
		"locked":              false,
		"failed_attempts":     0,
	})
}

func (r *AccountRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	fields["updated_at"] = time.Now().UTC().Unix()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (d *accountDoc) toDomain() *domain.Account {
	account := &domain.Account{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		Authorities:    d.Authorities,
		Active:         d.Active,
		Locked:         d.Locked,
		Deleted:        d.Deleted,
		FailedAttempts: d.FailedAttempts,
		CreatedAt:      unixToTime(d.CreatedAt),
		UpdatedAt:      unixToTime(d.UpdatedAt),
	}
	if d.PasswordChangedAt != 0 {
		t := unixToTime(d.PasswordChangedAt)
		account.PasswordChangedAt = &t
	}
	return account
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
