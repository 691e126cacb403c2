package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.EnvDevelopment, cfg.Environment)
	assert.Equal(t, config.StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(10240), cfg.MaxBodyBytes)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 20, cfg.AuthRateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, config.StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoad_File(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "taskflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: from-file\nport: \"7070\"\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "7070", cfg.Port)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsBcryptCostOutOfRange(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BCRYPT_COST", "2")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestLoad_RejectsNonPositiveLimits(t *testing.T) {
	tests := map[string]string{
		"MAX_BODY_BYTES":    "0",
		"RATE_LIMIT_WINDOW": "0s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(key, value)

			_, err := config.Load("")
			assert.ErrorContains(t, err, key)
		})
	}
}
