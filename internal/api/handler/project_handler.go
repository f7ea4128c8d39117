package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectforge/projectforge-api/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create handles POST /api/v1/projects.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      projectRequest  true  "Project details"
// @Success      201   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.service.Create(c.Request().Context(), principal, ports.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// List handles GET /api/v1/projects. Admins see every project, users only
// their own.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Project
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	projects, err := h.service.List(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// Update handles PUT /api/v1/projects/:id.
//
// @Summary      Replace a project's title and description
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Project ID"
// @Param        body  body      projectRequest  true  "Project details"
// @Success      200   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}

	// Ownership is checked before the body is validated, so a missing or
	// foreign project reports 404/403 even for an invalid payload.
	project, err := h.service.Update(c.Request().Context(), principal, c.Param("id"), ports.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Delete handles DELETE /api/v1/projects/:id. The project's issues are
// deleted with it.
//
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Deleted successfully"})
}
