package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"APPVIEW_PORT", "DATABASE_URL", "SNAPSHOT_PATH", "SNAPSHOT_INTERVAL", "SEED_DEMO",
	"AUTH_JWT_SECRET", "AUTH_JWKS_URL", "IS_DEV_ENV", "SESSION_SECRET", "CORS_ALLOWED_ORIGINS",
	"RATE_LIMIT_PER_MINUTE", "PROFILE_CACHE_SIZE", "REQUIRE_REGISTERED_FOLLOW_TARGET", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_DevDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("IS_DEV_ENV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Equal(t, 10000, cfg.ProfileCacheSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.RequireRegisteredFollowTarget)
	assert.NotEmpty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_ExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APPVIEW_PORT", "9000")
	t.Setenv("AUTH_JWT_SECRET", "prod-secret")
	t.Setenv("SNAPSHOT_PATH", "/var/lib/agora/state.cbor")
	t.Setenv("SNAPSHOT_INTERVAL", "30s")
	t.Setenv("SEED_DEMO", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "20")
	t.Setenv("PROFILE_CACHE_SIZE", "0")
	t.Setenv("REQUIRE_REGISTERED_FOLLOW_TARGET", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/var/lib/agora/state.cbor", cfg.SnapshotPath)
	assert.Equal(t, 30*time.Second, cfg.SnapshotInterval)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.Equal(t, 0, cfg.ProfileCacheSize)
	assert.True(t, cfg.RequireRegisteredFollowTarget)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Empty(t, cfg.SessionSecret)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		env     map[string]string
		name    string
		wantErr string
	}{
		{
			name:    "no verifier outside dev",
			env:     map[string]string{},
			wantErr: "AUTH_JWT_SECRET or AUTH_JWKS_URL",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"AUTH_JWT_SECRET": "s", "SEED_DEMO": "maybe"},
			wantErr: "invalid SEED_DEMO",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"AUTH_JWT_SECRET": "s", "SNAPSHOT_INTERVAL": "often"},
			wantErr: "invalid SNAPSHOT_INTERVAL",
		},
		{
			name:    "zero rate limit",
			env:     map[string]string{"AUTH_JWT_SECRET": "s", "RATE_LIMIT_PER_MINUTE": "0"},
			wantErr: "RATE_LIMIT_PER_MINUTE must be positive",
		},
		{
			name:    "short session secret in dev",
			env:     map[string]string{"IS_DEV_ENV": "true", "SESSION_SECRET": "short"},
			wantErr: "SESSION_SECRET must be at least",
		},
		{
			name:    "snapshot with postgres",
			env:     map[string]string{"AUTH_JWT_SECRET": "s", "DATABASE_URL": "postgres://x", "SNAPSHOT_PATH": "/tmp/s"},
			wantErr: "SNAPSHOT_PATH only applies",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"AUTH_JWT_SECRET": "s", "LOG_LEVEL": "loud"},
			wantErr: "invalid LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
