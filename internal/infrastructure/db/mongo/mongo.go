package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout = 10 * time.Second
	appName        = "projectforge-api"
)

// Config selects the deployment and database holding users, projects,
// issues and audit logs.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func (c Config) clientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(c.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(c.timeout()).
		SetRetryWrites(true)
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Open connects, waits for a reachable primary and returns the configured
// database. Release it with Close.
func Open(ctx context.Context, cfg Config) (*mongo.Database, error) {
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(connectCtx, cfg.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(cfg.Database), nil
}

// Ping checks the primary is reachable. Used by the readiness probe.
func Ping(ctx context.Context, db *mongo.Database) error {
	return db.Client().Ping(ctx, readpref.Primary())
}

func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
