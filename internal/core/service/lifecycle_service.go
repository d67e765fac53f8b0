package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketsquare/identity-service/internal/core/domain"
	"github.com/marketsquare/identity-service/internal/core/ports"
)

// LifecycleService implements registration, account activation, and password
// reset.
type LifecycleService struct {
	accounts         ports.AccountRepository
	activationTokens ports.OneTimeTokenStore
	resetTokens      ports.OneTimeTokenStore
	hasher           ports.PasswordHasher
	notifier         ports.Notifier
	log              zerolog.Logger
}

// NewLifecycleService wires the lifecycle orchestrator.
func NewLifecycleService(
	accounts ports.AccountRepository,
	activationTokens ports.OneTimeTokenStore,
	resetTokens ports.OneTimeTokenStore,
	hasher ports.PasswordHasher,
	notifier ports.Notifier,
	log zerolog.Logger,
) *LifecycleService {
	return &LifecycleService{
		accounts:         accounts,
		activationTokens: activationTokens,
		resetTokens:      resetTokens,
		hasher:           hasher,
		notifier:         notifier,
		log:              log,
	}
}

// Register creates an inactive, unlocked account and emails an activation
// token to the owner.
func (s *LifecycleService) Register(ctx context.Context, email, password, confirm, authority string) (*domain.Account, error) {
	if authority != domain.AuthorityCustomer && authority != domain.AuthoritySeller {
		return nil, domain.ErrInvalidAuthority
	}
	if password != confirm {
		return nil, domain.ErrPasswordMismatch
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account, err := s.accounts.Create(ctx, &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Authorities:  []string{authority},
		Active:       false,
		Locked:       false,
		Deleted:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	activationToken, err := s.activationTokens.Issue(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue activation token: %w", err)
	}

	s.notifier.Notify(ports.TemplateActivation, account.Email, activationToken.Value)
	return account, nil
}

// Activate consumes an activation token and marks the account active.
//
// An expired token is removed, a fresh one is issued and emailed, and the
// call still fails with ErrActivationExpired — the auto-resend is deliberate
// self-service behaviour, not a success path.
func (s *LifecycleService) Activate(ctx context.Context, token string) error {
	activationToken, err := s.activationTokens.FindByValue(ctx, token)
	if err != nil {
		return err
	}

	account, err := s.accounts.FindByID(ctx, activationToken.AccountID)
	if err != nil {
		return err
	}

	if activationToken.Expired(time.Now().UTC()) {
		if delErr := s.activationTokens.Delete(ctx, activationToken.ID); delErr != nil {
			return fmt.Errorf("delete expired activation token: %w", delErr)
		}
		fresh, issueErr := s.activationTokens.Issue(ctx, account.ID)
		if issueErr != nil {
			return fmt.Errorf("reissue activation token: %w", issueErr)
		}
		s.notifier.Notify(ports.TemplateActivation, account.Email, fresh.Value)
		return domain.ErrActivationExpired
	}

	if err := s.accounts.SetActive(ctx, account.ID); err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	if err := s.activationTokens.Delete(ctx, activationToken.ID); err != nil {
		return fmt.Errorf("delete activation token: %w", err)
	}

	s.notifier.Notify(ports.TemplateActivated, account.Email)
	return nil
}

// ResendActivation replaces the pending activation token with a fresh one and
// notifies the owner. Already-active accounts are rejected.
func (s *LifecycleService) ResendActivation(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.Active {
		return domain.ErrAlreadyActivated
	}

	activationToken, err := s.activationTokens.Issue(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("issue activation token: %w", err)
	}

	s.notifier.Notify(ports.TemplateActivation, account.Email, activationToken.Value)
	return nil
}

// RequestPasswordReset issues a reset token (replacing any prior pending one)
// and emails the owner a reset link.
func (s *LifecycleService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.resetTokens.Issue(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	s.notifier.Notify(ports.TemplatePasswordReset, account.Email, resetToken.Value)
	return nil
}

// ResetPassword consumes a reset token and stores the new password. The new
// password must differ from the current one; success clears the lock flag and
// the attempt counter and stamps the password-changed instant.
func (s *LifecycleService) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	if newPassword != confirm {
		return domain.ErrPasswordMismatch
	}

	resetToken, err := s.resetTokens.FindByValue(ctx, token)
	if err != nil {
		return err
	}

	if resetToken.Expired(time.Now().UTC()) {
		if delErr := s.resetTokens.Delete(ctx, resetToken.ID); delErr != nil {
			return fmt.Errorf("delete expired reset token: %w", delErr)
		}
		return domain.ErrTokenExpired
	}

	account, err := s.accounts.FindByID(ctx, resetToken.AccountID)
	if err != nil {
		return err
	}

	if s.hasher.Compare(account.PasswordHash, newPassword) {
		return domain.ErrReusedPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.resetTokens.Delete(ctx, resetToken.ID); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}

	s.notifier.Notify(ports.TemplatePasswordChanged, account.Email)
	return nil
}
