package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /api/v1/audit.
//
// @Summary      List audit entries, newest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        entity_type  query     string  false  "user, project or issue"
// @Param        entity_id    query     string  false  "Entity ID"
// @Param        limit        query     int     false  "Max entries (default 50, max 200)"
// @Success      200          {array}   domain.AuditEntry
// @Failure      400          {object}  errorResponse
// @Failure      403          {object}  errorResponse
// @Router       /audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	filter := ports.AuditFilter{
		EntityType: c.QueryParam("entity_type"),
		EntityID:   c.QueryParam("entity_id"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return domain.Validation("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}

	entries, err := h.service.List(c.Request().Context(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
