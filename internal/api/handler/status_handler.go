package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	apiVersion = "1.0.0"
	banner     = "ProjectForge API is running"
)

type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// API reports that the versioned API is online.
//
// @Summary      API status
// @Tags         status
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       / [get]
func (h *StatusHandler) API(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:  "online",
		Version: apiVersion,
		Message: banner,
	})
}

// Root serves the plain-text banner at the server root.
func (h *StatusHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, banner)
}
