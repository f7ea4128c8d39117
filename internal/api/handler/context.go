package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/projectforge/projectforge-api/internal/api/middleware"
	"github.com/projectforge/projectforge-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. A
// missing principal means the route was mounted without Auth.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}
