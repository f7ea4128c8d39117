package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const secret = "0123456789abcdef0123456789abcdef"

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": secret})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != DriverPostgres || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.BcryptCost != 12 || cfg.Auth.TokenRevalidate {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginLockout != 15*time.Minute {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Auth)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.AuditWorkers != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis should be disabled by default")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("default env should be development")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"JWT_SECRET":       secret,
		"STORE_DRIVER":     "memory",
		"TOKEN_TTL":        "30m",
		"TOKEN_REVALIDATE": "true",
		"CORS_ORIGINS":     "https://a.example,https://b.example",
		"ENV":              "production",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreDriver != DriverMemory || cfg.Auth.TokenTTL != 30*time.Minute || !cfg.Auth.TokenRevalidate {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.IsDevelopment() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"missing secret": {map[string]string{}, "JWT_SECRET"},
		"short secret":   {map[string]string{"JWT_SECRET": "short"}, "at least 32 bytes"},
		"bad driver":     {map[string]string{"JWT_SECRET": secret, "STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		"bcrypt cost":    {map[string]string{"JWT_SECRET": secret, "BCRYPT_COST": "4"}, "BCRYPT_COST"},
		"half admin":     {map[string]string{"JWT_SECRET": secret, "ADMIN_EMAIL": "root@x.io"}, "ADMIN_PASSWORD"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, tc.env)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
