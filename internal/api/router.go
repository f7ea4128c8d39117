package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/projectforge/projectforge-api/internal/api/handler"
	"github.com/projectforge/projectforge-api/internal/api/middleware"
	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth     ports.AuthService
	Projects ports.ProjectService
	Issues   ports.IssueService
	Audit    ports.AuditService
}

// Options tune the HTTP boundary.
type Options struct {
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	CORSOrigins    []string
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.CheckFunc
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(opts.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "projectforge",
		Subsystem:  "http",
		Registerer: registerer(opts.Registerer),
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
		},
	}))
	if opts.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeout(opts.RequestTimeout))
	}

	// --- Handlers ---
	statusHandler := handler.NewStatusHandler()
	authHandler := handler.NewAuthHandler(svc.Auth)
	projectHandler := handler.NewProjectHandler(svc.Projects)
	issueHandler := handler.NewIssueHandler(svc.Issues)
	auditHandler := handler.NewAuditHandler(svc.Audit)
	requireAuth := middleware.Auth(svc.Auth)

	// --- Probes and tooling (no auth required) ---
	e.GET("/", statusHandler.Root)
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(opts.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	v1 := e.Group("/api/v1")
	v1.GET("", statusHandler.API)
	v1.GET("/docs/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Project routes ---
	projects := v1.Group("/projects", requireAuth)
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	// --- Issue routes ---
	issues := v1.Group("/issues", requireAuth)
	issues.POST("", issueHandler.Create)
	issues.GET("", issueHandler.List)
	issues.PUT("/:id", issueHandler.Update)
	issues.DELETE("/:id", issueHandler.Delete)

	// --- Audit routes (admin only) ---
	v1.GET("/audit", auditHandler.List, requireAuth, middleware.RBAC(domain.RoleAdmin))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "route not found")
	})

	return e
}

func registerer(r prometheus.Registerer) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// requestLogger writes one access log line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error()
			} else if v.Status >= http.StatusBadRequest {
				evt = log.Warn()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
