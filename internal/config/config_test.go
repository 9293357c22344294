package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("USERHUB_PG_DSN", "postgres://localhost:5432/userhub")
	t.Setenv("USERHUB_AUTH_SECRET", "test-secret")
	t.Setenv("USERHUB_BCRYPT_COST", "10")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, int64(10), cfg.RateLimitMax)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadReportsAllMissingSettings(t *testing.T) {
	t.Setenv("USERHUB_PG_DSN", "")
	t.Setenv("USERHUB_AUTH_SECRET", "")
	t.Setenv("USERHUB_BCRYPT_COST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USERHUB_PG_DSN")
	assert.Contains(t, err.Error(), "USERHUB_AUTH_SECRET")
	assert.Contains(t, err.Error(), "USERHUB_BCRYPT_COST")
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	setRequired(t)
	t.Setenv("USERHUB_BCRYPT_COST", "99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("USERHUB_ENV", "staging")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("USERHUB_ENV", "development")
	t.Setenv("USERHUB_TOKEN_TTL", "30m")
	t.Setenv("USERHUB_RATE_LIMIT_WINDOW", "10s")
	t.Setenv("USERHUB_RATE_LIMIT_MAX", "3")
	t.Setenv("USERHUB_CACHE_TTL", "1m")
	t.Setenv("USERHUB_REDIS_ADDR", "localhost:6379")
	t.Setenv("USERHUB_REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, int64(3), cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestValidateRejectsNegativeLimits(t *testing.T) {
	cfg := &Config{
		DatabaseDSN:     "postgres://localhost/userhub",
		AuthSecret:      "secret",
		BcryptCost:      10,
		RateLimitWindow: time.Minute,
		RateLimitMax:    0,
		CacheTTL:        time.Minute,
	}
	require.Error(t, cfg.Validate())
}
