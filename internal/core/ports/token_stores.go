package ports

import (
	"context"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

// RefreshTokenStore persists the single live refresh token per account.
type RefreshTokenStore interface {
	// Replace atomically swaps the account's refresh token for a freshly
	// generated one, preserving the one-per-account invariant even under
	// concurrent logins.
	Replace(ctx context.Context, accountID string) (*domain.RefreshToken, error)

	// FindByValue returns the token with the given opaque value, or
	// domain.ErrTokenInvalid when no row matches.
	FindByValue(ctx context.Context, value string) (*domain.RefreshToken, error)

	// Delete removes a single token row by id.
	Delete(ctx context.Context, id string) error

	// DeleteByAccount removes the account's refresh token, ending the
	// refresh chain.
	DeleteByAccount(ctx context.Context, accountID string) error
}

// OneTimeTokenStore persists single-use tokens (activation, password reset).
// Each account holds at most one pending token per store.
type OneTimeTokenStore interface {
	// Issue generates a cryptographically random value with a fresh expiry
	// and persists it, replacing any prior pending token for the account.
	Issue(ctx context.Context, accountID string) (*domain.OneTimeToken, error)

	// FindByValue returns the token with the given opaque value, or
	// domain.ErrTokenInvalid when no row matches.
	FindByValue(ctx context.Context, value string) (*domain.OneTimeToken, error)

	// Delete removes a single token row by id.
	Delete(ctx context.Context, id string) error
}
