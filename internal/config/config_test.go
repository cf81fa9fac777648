package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.JWTExpiryHours)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://vote.example, https://admin.example")
	t.Setenv("JWT_EXPIRES_HOURS", "24")
	t.Setenv("ADMIN_ADMISSION_NUMBERS", "CT101-0001,CT101-0002")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://vote.example", "https://admin.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 24, cfg.JWTExpiryHours)

	assert.True(t, cfg.IsAdmin("CT101-0001"))
	assert.True(t, cfg.IsAdmin("CT101-0002"))
	assert.False(t, cfg.IsAdmin("CT101-0003"))
}

func TestParseList(t *testing.T) {
	assert.Empty(t, parseList(""))
	assert.Equal(t, []string{"a", "b"}, parseList("a, b,"))
}
