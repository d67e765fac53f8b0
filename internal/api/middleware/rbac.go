package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthority enforces that the session carries at least one of the
// allowed authorities. Unauthenticated requests are rejected here, not in
// Session.
func RequireAuthority(allowed ...string) echo.MiddlewareFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authorities, _ := c.Get(ContextKeyAuthorities).([]string)
			if len(authorities) == 0 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}
			for _, a := range authorities {
				if _, ok := allowedSet[a]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
