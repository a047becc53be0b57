package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, "InventarioPro", cfg.Auth.TOTPIssuer)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.local,http://b.local")
	t.Setenv("SMTP_HOST", "smtp.local")
	t.Setenv("SMTP_FROM", "noreply@local")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestNew_RejectsNonPositiveAttempts(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("AUTH_MAX_LOGIN_ATTEMPTS", "0")

	_, err := New()
	assert.Error(t, err)
}
