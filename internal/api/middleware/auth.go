package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

const principalKey = "principal"

// Auth resolves the bearer token through authn and stores the resulting
// principal in the echo context. Failures are returned as domain errors for
// the central error handler to render.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrInvalidToken
			}

			principal, err := authn.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the principal stored by Auth.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok && p.UserID != ""
}

// SetPrincipal stores p as if Auth had run. Used by tests of downstream
// handlers.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
