package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("JWT_REFRESH_EXPIRY", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("APP_PORT", "")
}

func TestLoadSQLiteDefaults(t *testing.T) {
	setBase(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/finance.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadReportsEveryProblem(t *testing.T) {
	setBase(t)
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("BCRYPT_COST", "ten")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{"DB_USER", "DB_HOST", "DB_NAME", "JWT_ACCESS_SECRET", "BCRYPT_COST"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadRejectsBadTokenSettings(t *testing.T) {
	setBase(t)
	t.Setenv("JWT_REFRESH_SECRET", "access")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")

	setBase(t)
	t.Setenv("JWT_ACCESS_EXPIRY", "2d")
	t.Setenv("JWT_REFRESH_EXPIRY", "1d")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shorter")

	setBase(t)
	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestParseExpiry(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":   7 * 24 * time.Hour,
		"15m":  15 * time.Minute,
		"168h": 168 * time.Hour,
	}
	for in, want := range cases {
		got, err := parseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"0d", "-1d", "xd", "soon", "-5m", "0s"} {
		_, err := parseExpiry(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.InDelta(t, 0.5, cfg.PerSecond(), 1e-9)
}

func TestRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_DISABLED", "true")
	rdb, err := NewRedisClient(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
