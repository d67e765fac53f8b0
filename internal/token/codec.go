// Package token implements the signed access-token codec (JWT, HS256).
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketsquare/identity-service/internal/core/domain"
	"github.com/marketsquare/identity-service/internal/core/ports"
)

const defaultTTL = 15 * time.Minute

// Codec signs and verifies access tokens. Stateless and safe for concurrent
// use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec returns a Codec signing with the given secret. A non-positive TTL
// falls back to 15 minutes.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured access-token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Generate issues a signed token with subject email and an authorities claim.
func (c *Codec) Generate(email string, authorities []string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.ttl)

	claims := jwt.MapClaims{
		"sub":         email,
		"authorities": authorities,
		"iat":         now.Unix(),
		"exp":         expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry. Any failure collapses to
// domain.ErrTokenInvalid; callers get no further detail.
func (c *Codec) Verify(token string) (*ports.AccessClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, domain.ErrTokenInvalid
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrTokenInvalid
	}

	return &ports.AccessClaims{
		Email:       email,
		Authorities: claimAuthorities(claims),
		ExpiresAt:   exp.Time,
	}, nil
}

// claimAuthorities pulls the authorities claim out of the decoded JSON, where
// it arrives as []interface{}.
func claimAuthorities(claims jwt.MapClaims) []string {
	raw, ok := claims["authorities"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
