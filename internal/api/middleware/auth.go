package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/marketsquare/identity-service/internal/core/domain"
	"github.com/marketsquare/identity-service/internal/core/ports"
)

// Context keys populated by Session for downstream handlers and RBAC.
const (
	ContextKeyEmail       = "email"
	ContextKeyAuthorities = "authorities"
)

// Session is the per-request gateway for bearer tokens.
//
// Requests without an Authorization header pass through unauthenticated —
// route-level guards decide whether that is acceptable. When a token is
// present, the blacklist is consulted before the signature: a revoked token
// is rejected as logged out even if it would no longer verify. Authorities
// attached to the context are re-read from the account store, not taken from
// the token claims, so a role revocation takes effect on the very next
// request.
func Session(codec ports.TokenCodec, blacklist ports.BlacklistCache, accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			rawToken := parts[1]

			revoked, err := blacklist.IsBlacklisted(c.Request().Context(), rawToken)
			if err != nil {
				return err
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "already logged out")
			}

			claims, err := codec.Verify(rawToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			account, err := accounts.FindByEmail(c.Request().Context(), claims.Email)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(ContextKeyEmail, account.Email)
			c.Set(ContextKeyAuthorities, account.Authorities)

			return next(c)
		}
	}
}
