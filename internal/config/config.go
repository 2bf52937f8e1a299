package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config constraint service configuration
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	Engine struct {
		// CatalogPath optionally points at a YAML rule catalog.
		// Empty means the built-in default catalog.
		CatalogPath string

		// Workers is the number of concurrent per-patient evaluations.
		Workers int

		// PollInterval is the batch re-evaluation interval (seconds).
		PollInterval int

		// Cache settings for publishing constraint documents
		Cache struct {
			KeyPrefix string // e.g. "pantry:patient:"
			KeySuffix string // e.g. ":constraints"
			TTL       int    // seconds, 0 = no expiry
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "pantry")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Engine.CatalogPath = getEnv("CATALOG_PATH", "")
	cfg.Engine.Workers = getEnvInt("ENGINE_WORKERS", 4)
	cfg.Engine.PollInterval = getEnvInt("ENGINE_POLL_INTERVAL", 300)
	cfg.Engine.Cache.KeyPrefix = getEnv("CACHE_CONSTRAINT_PREFIX", "pantry:patient:")
	cfg.Engine.Cache.KeySuffix = ":constraints"
	cfg.Engine.Cache.TTL = getEnvInt("CACHE_CONSTRAINT_TTL", 3600)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
