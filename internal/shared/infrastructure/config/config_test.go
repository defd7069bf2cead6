package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "https://tokenized.sandbox.bka.sh/v1.2.0-beta", cfg.Bkash.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Bkash.Timeout)
	assert.Equal(t, "http://localhost:8080", cfg.Checkout.CallbackBaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BKASH_TIMEOUT", "5s")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("PORTFOLIO_URL", "https://portfolio.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Bkash.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "https://portfolio.example.com", cfg.Checkout.PortfolioURL)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("BKASH_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.Bkash.Timeout)
}

func TestPostgresURL(t *testing.T) {
	cfg := Load()
	url := cfg.Database.URL()
	assert.Contains(t, url, "postgres://")
	assert.Contains(t, url, "sslmode=disable")
}
