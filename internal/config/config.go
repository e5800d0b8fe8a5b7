package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the gateway process.
type Config struct {
	Server     ServerConfig
	Gateway    GatewayConfig
	RateLimit  RateLimitConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// GatewayConfig covers the public API surface itself.
type GatewayConfig struct {
	Title      string
	Version    string
	BaseURL    string
	AuthHeader string
	// AdminToken guards the key management surface; empty disables it.
	AdminToken string
	// BreakerEnabled wraps handler dispatch in per-category circuit
	// breakers when set.
	BreakerEnabled bool
}

type RateLimitConfig struct {
	// DefaultCeiling is the requests-per-hour ceiling applied to keys
	// issued without an explicit one.
	DefaultCeiling int
	// MaxCeiling caps the ceiling any single key may be issued with.
	MaxCeiling int
}

type DatabaseConfig struct {
	// URL enables the Postgres-backed key store when non-empty; keys are
	// kept in memory otherwise.
	URL string
}

type RedisConfig struct {
	// URL enables the Redis-backed rate limiter when non-empty.
	URL string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MonitoringConfig struct {
	PrometheusEnabled bool
	PrometheusPort    int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("API_PORT", 8080),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Gateway: GatewayConfig{
			Title:          getEnv("GATEWAY_TITLE", "Dog Walking Public API"),
			Version:        getEnv("GATEWAY_VERSION", "1.0"),
			BaseURL:        getEnv("GATEWAY_BASE_URL", "https://api.dogwalking.example/api/v1"),
			AuthHeader:     getEnv("GATEWAY_AUTH_HEADER", "X-API-Key"),
			AdminToken:     getEnv("GATEWAY_ADMIN_TOKEN", ""),
			BreakerEnabled: getEnvBool("GATEWAY_BREAKER_ENABLED", false),
		},
		RateLimit: RateLimitConfig{
			DefaultCeiling: getEnvInt("RATE_LIMIT_DEFAULT", 1000),
			MaxCeiling:     getEnvInt("RATE_LIMIT_MAX", 10000),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getEnvBool("PROMETHEUS_ENABLED", true),
			PrometheusPort:    getEnvInt("PROMETHEUS_PORT", 9090),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.RateLimit.DefaultCeiling <= 0 {
		return fmt.Errorf("RATE_LIMIT_DEFAULT must be positive, got %d", c.RateLimit.DefaultCeiling)
	}
	if c.RateLimit.MaxCeiling < c.RateLimit.DefaultCeiling {
		return fmt.Errorf("RATE_LIMIT_MAX (%d) must be >= RATE_LIMIT_DEFAULT (%d)",
			c.RateLimit.MaxCeiling, c.RateLimit.DefaultCeiling)
	}
	if c.Gateway.AuthHeader == "" {
		return fmt.Errorf("GATEWAY_AUTH_HEADER must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
