package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

// IssueHandler handles HTTP requests for issue operations.
type IssueHandler struct {
	service ports.IssueService
}

func NewIssueHandler(service ports.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// Create handles POST /api/v1/issues. The issue is assigned to the caller.
//
// @Summary      Create an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIssueRequest  true  "Issue details"
// @Success      201   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.Create(c.Request().Context(), principal, ports.IssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.IssueStatus(req.Status),
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, issue)
}

// List handles GET /api/v1/issues?project_id=.
//
// @Summary      List a project's issues
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  true  "Project ID"
// @Success      200         {array}   domain.Issue
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	issues, err := h.service.List(c.Request().Context(), principal, c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issues)
}

// Update handles PUT /api/v1/issues/:id.
//
// @Summary      Replace an issue's title, description and status
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Issue ID"
// @Param        body  body      updateIssueRequest  true  "Issue details"
// @Success      200   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /issues/{id} [put]
func (h *IssueHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateIssueRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}

	issue, err := h.service.Update(c.Request().Context(), principal, c.Param("id"), ports.IssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.IssueStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Delete handles DELETE /api/v1/issues/:id.
//
// @Summary      Delete an issue
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /issues/{id} [delete]
func (h *IssueHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Deleted successfully"})
}
