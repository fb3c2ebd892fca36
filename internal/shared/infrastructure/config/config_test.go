package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tanmay0711/leaveflow/internal/shared/infrastructure/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT", "DB_HOST", "DB_NAME", "REDIS_HOST",
		"REDIS_MAX_RETRIES", "REDIS_RETRY_BASE_DELAY", "REDIS_RETRY_MAX_DELAY",
		"JWT_SECRET", "JWT_EXPIRATION", "GOOGLE_CALENDAR_ID",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "leaveflow", cfg.Database.DBName)
	assert.Equal(t, 10, cfg.Redis.MaxRetries)
	assert.Equal(t, time.Second, cfg.Redis.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Redis.MaxDelay)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_MAX_RETRIES", "3")
	t.Setenv("REDIS_RETRY_BASE_DELAY", "500ms")
	t.Setenv("JWT_EXPIRATION", "1h")
	t.Setenv("GOOGLE_CALENDAR_ID", "team@example.com")

	cfg := config.Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3, cfg.Redis.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.BaseDelay)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "team@example.com", cfg.Google.CalendarID)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_MAX_RETRIES", "lots")
	t.Setenv("REDIS_RETRY_BASE_DELAY", "soon")
	t.Setenv("JWT_EXPIRATION", "tomorrow")

	cfg := config.Load()
	assert.Equal(t, 10, cfg.Redis.MaxRetries)
	assert.Equal(t, time.Second, cfg.Redis.BaseDelay)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
}
