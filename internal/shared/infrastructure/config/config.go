package config

import (
	"os"
	"time"

	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/database"
)

// Config holds all configuration for the application. It is built once at
// startup and passed into each module; nothing else reads the environment.
type Config struct {
	Server   ServerConfig
	Database database.PostgresConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Bkash    BkashConfig
	Checkout CheckoutConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// RedisConfig wraps the connection config with an enable switch. The
// callback lock degrades gracefully when Redis is not deployed.
type RedisConfig struct {
	database.RedisConfig
	Enabled bool
}

// JWTConfig holds admin token verification configuration
type JWTConfig struct {
	Secret string
}

// BkashConfig holds the tokenized-checkout gateway credentials
type BkashConfig struct {
	BaseURL   string
	AppKey    string
	AppSecret string
	Username  string
	Password  string
	Timeout   time.Duration
}

// CheckoutConfig holds the URLs the purchase flow redirects through
type CheckoutConfig struct {
	// CallbackBaseURL is where the gateway sends the buyer's browser back.
	CallbackBaseURL string
	// PortfolioURL and AdminURL are buyer-facing redirect bases, tried in
	// that order when the caller did not pass an explicit redirect target.
	PortfolioURL string
	AdminURL     string
	// CallbackSecret keys the HMAC carried through the gateway round-trip.
	CallbackSecret string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:4200"),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "trackhaus"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			RedisConfig: database.RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       0,
			},
			Enabled: getEnv("REDIS_ENABLED", "true") == "true",
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-dev-secret"),
		},
		Bkash: BkashConfig{
			BaseURL:   getEnv("BKASH_BASE_URL", "https://tokenized.sandbox.bka.sh/v1.2.0-beta"),
			AppKey:    getEnv("BKASH_APP_KEY", ""),
			AppSecret: getEnv("BKASH_APP_SECRET", ""),
			Username:  getEnv("BKASH_USERNAME", ""),
			Password:  getEnv("BKASH_PASSWORD", ""),
			Timeout:   parseDuration(getEnv("BKASH_TIMEOUT", "30s"), 30*time.Second),
		},
		Checkout: CheckoutConfig{
			CallbackBaseURL: getEnv("CALLBACK_BASE_URL", "http://localhost:8080"),
			PortfolioURL:    getEnv("PORTFOLIO_URL", ""),
			AdminURL:        getEnv("ADMIN_FRONTEND_URL", ""),
			CallbackSecret:  getEnv("CALLBACK_SECRET", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
