package ports

import (
	"context"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

// LifecycleService orchestrates account registration, activation, and
// password reset.
type LifecycleService interface {
	// Register creates an inactive account with the given authority and
	// issues an activation token to the owner's email.
	Register(ctx context.Context, email, password, confirm, authority string) (*domain.Account, error)

	// Activate consumes an activation token and marks the account active.
	// An expired token is deleted, a fresh one is issued and notified, and
	// domain.ErrActivationExpired is returned.
	Activate(ctx context.Context, token string) error

	// ResendActivation replaces the pending activation token with a fresh
	// one and notifies the owner.
	ResendActivation(ctx context.Context, email string) error

	// RequestPasswordReset issues a password-reset token (replacing any
	// prior) and notifies the owner.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and stores the new password,
	// clearing any lockout.
	ResetPassword(ctx context.Context, token, newPassword, confirm string) error
}
