package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/projectforge/projectforge-api/docs" // swagger docs

	"github.com/projectforge/projectforge-api/internal/api"
	"github.com/projectforge/projectforge-api/internal/api/handler"
	"github.com/projectforge/projectforge-api/internal/api/metrics"
	"github.com/projectforge/projectforge-api/internal/core/policy"
	"github.com/projectforge/projectforge-api/internal/core/ports"
	"github.com/projectforge/projectforge-api/internal/core/service"
	"github.com/projectforge/projectforge-api/internal/infrastructure/config"
	"github.com/projectforge/projectforge-api/internal/infrastructure/db/memory"
	"github.com/projectforge/projectforge-api/internal/infrastructure/db/mongo"
	"github.com/projectforge/projectforge-api/internal/infrastructure/db/postgres"
	"github.com/projectforge/projectforge-api/internal/infrastructure/db/redis"
	"github.com/projectforge/projectforge-api/internal/infrastructure/queue"
	"github.com/projectforge/projectforge-api/internal/infrastructure/security"
	"github.com/projectforge/projectforge-api/migrations"
	"github.com/projectforge/projectforge-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       ProjectForge API
// @version                     1.0.0
// @description                 A scalable REST API for project and issue management with JWT authentication and role-based access control
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "projectforge-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// stores bundles the repositories of the selected driver.
type stores struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	issues   ports.IssueRepository
	audit    ports.AuditRepository
	ping     handler.CheckFunc
	close    func(context.Context)
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	checks := map[string]handler.CheckFunc{cfg.StoreDriver: st.ping}

	// --- Security ---
	hasher := metrics.InstrumentHasher(security.NewBcryptHasher(cfg.Auth.BcryptCost))
	tokens := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authz := metrics.InstrumentAuthorizer(policy.NewOwnerOrAdmin())

	// --- Audit trail ---
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, st.audit, logger.Component("audit")).
		WithObserver(metrics.AuditObserver{})
	// Workers outlive the signal context so Shutdown can drain them.
	dispatcher.Start(context.Background())

	authService := service.NewAuthService(st.users, hasher, tokens, logger.Component("auth")).
		WithAudit(dispatcher).
		WithRevalidation(cfg.Auth.TokenRevalidate)

	// --- Login throttle (optional) ---
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		authService.WithThrottle(redis.NewLoginLockout(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	}

	if cfg.Admin.Email != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	e := api.NewRouter(api.Services{
		Auth:     metrics.InstrumentAuth(authService),
		Projects: service.NewProjectService(st.projects, authz, dispatcher, logger.Component("projects")),
		Issues:   service.NewIssueService(st.issues, st.projects, authz, dispatcher, logger.Component("issues")),
		Audit:    service.NewAuditService(st.audit),
	}, api.Options{
		Logger:         logger.Component("http"),
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		Checks:         checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// Drain pending audit entries after no more requests can enqueue them.
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit dispatcher shutdown failed")
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("postgres connected and migrated")
		return &stores{
			users:    postgres.NewUserRepository(pool),
			projects: postgres.NewProjectRepository(pool),
			issues:   postgres.NewIssueRepository(pool),
			audit:    postgres.NewAuditRepository(pool),
			ping:     pool.Ping,
			close:    func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMongo:
		db, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = mongo.Close(ctx, db)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
		return &stores{
			users:    mongo.NewUserRepository(db),
			projects: mongo.NewProjectRepository(db),
			issues:   mongo.NewIssueRepository(db),
			audit:    mongo.NewAuditRepository(db),
			ping:     func(ctx context.Context) error { return mongo.Ping(ctx, db) },
			close:    func(ctx context.Context) { _ = mongo.Close(ctx, db) },
		}, nil

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &stores{
			users:    store.Users(),
			projects: store.Projects(),
			issues:   store.Issues(),
			audit:    store.Audit(),
			ping:     store.Ping,
			close:    func(context.Context) {},
		}, nil
	}
}
