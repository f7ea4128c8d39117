package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindAuthorization:  http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindDependency:     http.StatusInternalServerError,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to HTTP status codes.
//   - Logs dependency failures internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"kind": "...", "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, unknown routes, timeouts).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := kindForStatus(he.Code)
		msg := fmt.Sprintf("%v", he.Message)
		if kind == domain.KindDependency {
			logFailure(log, c, err)
			msg = http.StatusText(he.Code)
		}
		return he.Code, errorResponse{Kind: kind, Message: msg}
	}

	kind := domain.KindOf(err)
	if kind == domain.KindDependency {
		logFailure(log, c, err)
	}
	return kindStatus[kind], errorResponse{Kind: kind, Message: domain.PublicMessage(err)}
}

func kindForStatus(code int) domain.Kind {
	for kind, status := range kindStatus {
		if status == code {
			return kind
		}
	}
	if code >= http.StatusInternalServerError {
		return domain.KindDependency
	}
	return domain.KindValidation
}

func logFailure(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request failed")
}
