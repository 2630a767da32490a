package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Vocea Pacienților", cfg.AppName)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5, cfg.RateLimitAuth)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Empty(t, cfg.TrustedProxies)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadReportsEveryProblem(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_WINDOW", "un sfert de oră")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{"APP_ENV", "APP_URL", "JWT_SECRET", "RATE_LIMIT_WINDOW"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadProductionNeedsEmail(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("RESEND_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY")
}

func TestTrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7 ,fd00::/8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("fd00::/8"),
	}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "proxy.local")
	_, err = Load()
	assert.ErrorContains(t, err, "proxy.local")
}

func TestSanitizedDropsSecrets(t *testing.T) {
	cfg := &Config{AppName: "Vocea", JWTSecret: "s", ResendAPIKey: "k", S3SecretKey: "x", GoogleClientSecret: "g"}
	safe := cfg.Sanitized()
	assert.Equal(t, "Vocea", safe.AppName)
	assert.Empty(t, safe.JWTSecret)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.S3SecretKey)
	assert.Empty(t, safe.GoogleClientSecret)
}
