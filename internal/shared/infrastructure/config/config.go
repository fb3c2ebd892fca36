package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tanmay0711/leaveflow/internal/shared/infrastructure/database"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database database.PostgresConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Google   GoogleConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	AllowedOrigins  string
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// RedisConfig holds the session cache connection settings, including the
// reconnect policy used by the cache connection manager.
type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// GoogleConfig holds Google OAuth and Calendar configuration
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	CalendarID   string
}

// Load reads configuration from environment variables
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:4200"),
			ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "20s"), 20*time.Second),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "leaveflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         0,
			MaxRetries: parseInt(getEnv("REDIS_MAX_RETRIES", "10"), 10),
			BaseDelay:  parseDuration(getEnv("REDIS_RETRY_BASE_DELAY", "1s"), time.Second),
			MaxDelay:   parseDuration(getEnv("REDIS_RETRY_MAX_DELAY", "30s"), 30*time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-dev-secret"),
			Expiry: parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/calendar/oauth/callback"),
			CalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),
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

// parseInt parses an integer string or returns a default value
func parseInt(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return defaultValue
}
