package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

func TestHTTPErrorHandler_Envelope(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantKind domain.Kind
		wantMsg  string
	}{
		{"validation", domain.Validation("title is required"), http.StatusBadRequest, domain.KindValidation, "title is required"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, domain.KindAuthentication, "authentication required"},
		{"expired", domain.ErrTokenExpired, http.StatusUnauthorized, domain.KindAuthentication, "token expired"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, domain.KindAuthorization, "access forbidden"},
		{"not found", domain.ErrProjectNotFound, http.StatusNotFound, domain.KindNotFound, "project not found"},
		{"conflict", domain.ErrEmailTaken, http.StatusConflict, domain.KindConflict, "email already registered"},
		{"rate limited", domain.ErrTooManyAttempts, http.StatusTooManyRequests, domain.KindRateLimited, "too many failed login attempts"},
		{"dependency", domain.Dependency("insert project", errors.New("pq: connection refused")), http.StatusInternalServerError, domain.KindDependency, "internal server error"},
		{"unclassified", errors.New("secret detail"), http.StatusInternalServerError, domain.KindDependency, "internal server error"},
		{"echo 404", echo.ErrNotFound, http.StatusNotFound, domain.KindNotFound, "Not Found"},
		{"echo 405", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, domain.KindValidation, "Method Not Allowed"},
		{"echo 503", echo.ErrServiceUnavailable, http.StatusServiceUnavailable, domain.KindDependency, "Service Unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Kind != tc.wantKind || body.Message != tc.wantMsg {
				t.Fatalf("body = %+v, want kind %s message %q", body, tc.wantKind, tc.wantMsg)
			}
			if strings.Contains(rec.Body.String(), "connection refused") || strings.Contains(rec.Body.String(), "secret detail") {
				t.Fatalf("response leaked internal detail: %s", rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommitted(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)
	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten")
	}
}
