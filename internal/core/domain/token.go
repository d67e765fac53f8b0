package domain

import "time"

// Default lifetimes for the persisted token kinds. Access-token TTL is
// configured on the codec and never persisted.
const (
	DefaultRefreshTokenTTL    = 24 * time.Hour
	DefaultActivationTokenTTL = 5 * time.Minute
	DefaultResetTokenTTL      = 2 * time.Minute
)

// RefreshToken is the long-lived opaque credential used to mint new access
// tokens without re-entering a password. At most one live token exists per
// account: login replaces it, logout or expiry detection removes it.
type RefreshToken struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// OneTimeToken is a single-use, time-boxed token bound to an account. Both
// activation and password-reset tokens share this shape; the kind is implied
// by the store it lives in. Consumption deletes the row, as does expiry
// detection.
type OneTimeToken struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *OneTimeToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
