package ports

import "time"

// AccessClaims is the decoded payload of a verified access token.
type AccessClaims struct {
	Email       string
	Authorities []string
	ExpiresAt   time.Time
}

// TokenCodec signs, verifies, and decodes access tokens. Stateless.
type TokenCodec interface {
	// Generate issues a signed access token for the subject with the given
	// authorities and the configured TTL.
	Generate(email string, authorities []string) (token string, expiresAt time.Time, err error)

	// Verify checks signature and expiry, returning the decoded claims or
	// domain.ErrTokenInvalid on any failure.
	Verify(token string) (*AccessClaims, error)
}
