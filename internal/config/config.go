// Package config reads the AppView settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort             = "8081"
	defaultRateLimit        = 100
	defaultProfileCacheSize = 10000
	defaultSnapshotInterval = 5 * time.Minute

	// Only used when IS_DEV_ENV=true and nothing else is configured
	devJWTSecret     = "agora-dev-jwt-secret"
	devSessionSecret = "agora-dev-session-secret-32bytes!"

	minSessionSecretLength = 32
)

// Config holds every setting the server needs at startup
type Config struct {
	Port        string
	DatabaseURL string

	// Memory backend persistence; ignored when DatabaseURL is set
	SnapshotPath     string
	SnapshotInterval time.Duration
	SeedDemo         bool

	JWTSecret     string
	JWKSURL       string
	IsDevEnv      bool
	SessionSecret string

	CORSAllowedOrigins []string
	RateLimitPerMinute int
	ProfileCacheSize   int

	RequireRegisteredFollowTarget bool

	LogLevel slog.Level
}

// UsePostgres reports whether the postgres backend is configured
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Load reads and validates the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("APPVIEW_PORT", defaultPort),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SnapshotPath: os.Getenv("SNAPSHOT_PATH"),
		JWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		JWKSURL:      os.Getenv("AUTH_JWKS_URL"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
	}

	var err error
	if cfg.SnapshotInterval, err = getDuration("SNAPSHOT_INTERVAL", defaultSnapshotInterval); err != nil {
		return nil, err
	}
	if cfg.SeedDemo, err = getBool("SEED_DEMO", false); err != nil {
		return nil, err
	}
	if cfg.IsDevEnv, err = getBool("IS_DEV_ENV", false); err != nil {
		return nil, err
	}
	if cfg.RequireRegisteredFollowTarget, err = getBool("REQUIRE_REGISTERED_FOLLOW_TARGET", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", defaultRateLimit); err != nil {
		return nil, err
	}
	if cfg.ProfileCacheSize, err = getInt("PROFILE_CACHE_SIZE", defaultProfileCacheSize); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = getLogLevel("LOG_LEVEL"); err != nil {
		return nil, err
	}
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	if cfg.IsDevEnv {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devJWTSecret
		}
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = devSessionSecret
		}
		if len(cfg.CORSAllowedOrigins) == 0 {
			cfg.CORSAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return errors.New("AUTH_JWT_SECRET or AUTH_JWKS_URL is required outside the dev environment")
	}
	if c.IsDevEnv && len(c.SessionSecret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	if c.ProfileCacheSize < 0 {
		return fmt.Errorf("PROFILE_CACHE_SIZE must not be negative, got %d", c.ProfileCacheSize)
	}
	if c.SnapshotInterval < 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must not be negative, got %s", c.SnapshotInterval)
	}
	if c.UsePostgres() && c.SnapshotPath != "" {
		return errors.New("SNAPSHOT_PATH only applies to the in-memory backend; unset it or DATABASE_URL")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getLogLevel(key string) (slog.Level, error) {
	var level slog.Level
	v := os.Getenv(key)
	if v == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return level, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
