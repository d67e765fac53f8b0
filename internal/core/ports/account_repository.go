package ports

import (
	"context"
	"time"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

// AccountRepository defines the interface for account persistence.
//
// The write operations are deliberately narrow: each one maps to a single
// atomic update against the account document so that concurrent logins can
// never under-count failed attempts or race the lock transition.
type AccountRepository interface {
	// Create persists a new account. Returns domain.ErrEmailExists when the
	// email is already registered.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// FindByEmail returns the non-deleted account with the given email, or
	// domain.ErrNotFound. Deleted accounts are treated as absent.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindByID returns the non-deleted account with the given id, or
	// domain.ErrNotFound.
	FindByID(ctx context.Context, id string) (*domain.Account, error)

	// ExistsByEmail reports whether any account (deleted or not) holds the
	// email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// RecordFailedAttempt atomically increments the failed-attempt counter.
	// It returns the counter value after the increment and whether this call
	// transitioned the account into the locked state. Calling it on an
	// already-locked account is a no-op reporting (MaxFailedAttempts, false).
	RecordFailedAttempt(ctx context.Context, id string) (attempts int, justLocked bool, err error)

	// ResetFailedAttempts sets the failed-attempt counter back to zero.
	ResetFailedAttempts(ctx context.Context, id string) error

	// SetActive marks the account as activated.
	SetActive(ctx context.Context, id string) error

	// UpdatePassword stores a new password hash, clears the lock flag and the
	// attempt counter, and stamps the password-changed instant.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}
