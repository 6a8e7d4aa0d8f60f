// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is populated from environment variables.
type Config struct {
	// Store
	StoreDriver    string        `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI       string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017/"`
	MongoDatabase  string        `envconfig:"MONGO_DATABASE" default:"SoccerScore"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	DBPoolMinConns int           `envconfig:"DB_POOL_MIN_CONNS" default:"2"`
	DBPoolMaxConns int           `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMaxLife  time.Duration `envconfig:"DB_POOL_MAX_LIFE" default:"30m"`

	// Upstream provider
	SportDataAPIKey            string        `envconfig:"SPORTDATA_API_KEY"`
	SportDataBaseURL           string        `envconfig:"SPORTDATA_BASE_URL" default:"https://app.sportdataapi.com/api/v1/soccer"`
	SportDataTimeout           time.Duration `envconfig:"SPORTDATA_TIMEOUT" default:"30s"`
	SportDataRequestsPerMinute int           `envconfig:"SPORTDATA_REQUESTS_PER_MINUTE" default:"60"`

	// API server
	APIHost     string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort     int    `envconfig:"API_PORT" default:"5000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`

	// Rate limiting
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`

	// Sync
	SyncOnStartup bool   `envconfig:"SYNC_ON_STARTUP" default:"true"`
	SyncCron      string `envconfig:"SYNC_CRON"`

	// Cache
	CacheEnabled bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	RedisURL     string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field requirements envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.CacheEnabled && c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.SportDataRequestsPerMinute <= 0 {
		return fmt.Errorf("SPORTDATA_REQUESTS_PER_MINUTE must be positive")
	}
	return nil
}

// RequireAPIKey fails when no provider key is configured. Only commands that
// talk to the provider call it.
func (c *Config) RequireAPIKey() error {
	if c.SportDataAPIKey == "" {
		return fmt.Errorf("SPORTDATA_API_KEY is required")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
