package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[p.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
