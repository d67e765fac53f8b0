package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketsquare/identity-service/internal/core/domain"
	"github.com/marketsquare/identity-service/internal/core/ports"
)

// AuthService implements login, logout, and access-token refresh.
type AuthService struct {
	accounts       ports.AccountRepository
	refreshTokens  ports.RefreshTokenStore
	codec          ports.TokenCodec
	blacklist      ports.BlacklistCache
	hasher         ports.PasswordHasher
	notifier       ports.Notifier
	passwordMaxAge time.Duration
	log            zerolog.Logger
}

// NewAuthService wires the authentication engine. A zero passwordMaxAge
// disables the credentials-expired check.
func NewAuthService(
	accounts ports.AccountRepository,
	refreshTokens ports.RefreshTokenStore,
	codec ports.TokenCodec,
	blacklist ports.BlacklistCache,
	hasher ports.PasswordHasher,
	notifier ports.Notifier,
	passwordMaxAge time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:       accounts,
		refreshTokens:  refreshTokens,
		codec:          codec,
		blacklist:      blacklist,
		hasher:         hasher,
		notifier:       notifier,
		passwordMaxAge: passwordMaxAge,
		log:            log,
	}
}

// Login verifies credentials and issues a fresh access/refresh token pair.
//
// Failure precedence: unknown or deleted email → ErrNotFound; locked →
// ErrAccountLocked; not yet activated → ErrAccountDisabled; password older
// than the configured max age → ErrCredentialsExpired; hash mismatch →
// ErrBadCredentials, except that the third consecutive mismatch locks the
// account and returns ErrAccountLocked instead.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account.Locked {
		return nil, domain.ErrAccountLocked
	}
	if !account.Active {
		return nil, domain.ErrAccountDisabled
	}
	if s.passwordExpired(account) {
		return nil, domain.ErrCredentialsExpired
	}

	if !s.hasher.Compare(account.PasswordHash, password) {
		attempts, justLocked, recErr := s.accounts.RecordFailedAttempt(ctx, account.ID)
		if recErr != nil {
			return nil, fmt.Errorf("record failed attempt: %w", recErr)
		}
		if justLocked {
			s.notifier.Notify(ports.TemplateAccountLocked, account.Email)
			s.log.Warn().Str("email", account.Email).Int("attempts", attempts).Msg("account locked after repeated failures")
			return nil, domain.ErrAccountLocked
		}
		return nil, domain.ErrBadCredentials
	}

	if err := s.accounts.ResetFailedAttempts(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("reset failed attempts: %w", err)
	}

	accessToken, expiresAt, err := s.codec.Generate(account.Email, account.Authorities)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.refreshTokens.Replace(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("replace refresh token: %w", err)
	}

	return &ports.LoginResult{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
		RefreshToken: refreshToken.Value,
		Email:        account.Email,
		Authorities:  account.Authorities,
	}, nil
}

// Logout revokes the access token via the blacklist and ends the account's
// refresh chain.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("blacklist check: %w", err)
	}
	if revoked {
		return domain.ErrTokenAlreadyRevoked
	}

	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	if err := s.blacklist.Put(ctx, accessToken, claims.ExpiresAt); err != nil {
		return fmt.Errorf("blacklist put: %w", err)
	}

	account, err := s.accounts.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}

	if err := s.refreshTokens.DeleteByAccount(ctx, account.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// Refresh mints a new access token from a live refresh token. Authorities are
// re-read from storage so role changes take effect on the next refresh. The
// refresh token value itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenValue string) (*ports.RefreshResult, error) {
	refreshToken, err := s.refreshTokens.FindByValue(ctx, refreshTokenValue)
	if err != nil {
		return nil, err
	}

	if refreshToken.Expired(time.Now().UTC()) {
		if delErr := s.refreshTokens.Delete(ctx, refreshToken.ID); delErr != nil {
			s.log.Error().Err(delErr).Msg("failed to delete expired refresh token")
		}
		return nil, domain.ErrTokenExpired
	}

	account, err := s.accounts.FindByID(ctx, refreshToken.AccountID)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.codec.Generate(account.Email, account.Authorities)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &ports.RefreshResult{
		AccessToken:  accessToken,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
		RefreshToken: refreshTokenValue,
	}, nil
}

// passwordExpired reports whether the stored password is older than the
// configured max age. Accounts that never changed their password are exempt.
func (s *AuthService) passwordExpired(account *domain.Account) bool {
	if s.passwordMaxAge <= 0 || account.PasswordChangedAt == nil {
		return false
	}
	return time.Since(*account.PasswordChangedAt) > s.passwordMaxAge
}
