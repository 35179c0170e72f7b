package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []byte("jwt-secret"), cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, []byte("session-secret"), cfg.Session.Secret)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, 10, cfg.RateLimit.PerMinute)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "studybud.db")
	t.Setenv("PORT", ":9000")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "0")
	t.Setenv("LOG_FORMAT", "json")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "studybud.db", cfg.Database.URL)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 0, cfg.RateLimit.PerMinute)
	assert.Equal(t, "json", cfg.Log.Format)
}
