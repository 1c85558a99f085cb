package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for portfolio-intel
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Catalog CatalogConfig
	Dataset DatasetConfig
	Redis   RedisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
}

// CatalogConfig points at the catalog and market definitions.
// Empty paths select the built-in data.
type CatalogConfig struct {
	CatalogFile string
	MarketsFile string
}

// DatasetConfig holds market synthesis settings
type DatasetConfig struct {
	Seed            int64
	LoadDelay       time.Duration
	RefreshInterval time.Duration
}

// RedisConfig holds the optional Redis event bus configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Channel  string
}

// Enabled reports whether a Redis address is configured
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	// A malformed seed must not silently fall back to clock seeding
	seed, err := parseEnvAsInt64("DATASET_SEED", 0)
	if err != nil {
		return nil, err
	}
	loadDelay, err := parseEnvAsDuration("DATASET_LOAD_DELAY", 0)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseEnvAsDuration("DATASET_REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level: level,
		},
		Catalog: CatalogConfig{
			CatalogFile: getEnv("CATALOG_FILE", ""),
			MarketsFile: getEnv("MARKETS_FILE", ""),
		},
		Dataset: DatasetConfig{
			Seed:            seed,
			LoadDelay:       loadDelay,
			RefreshInterval: refreshInterval,
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "portfolio:dataset"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}

	if c.Dataset.LoadDelay < 0 {
		return fmt.Errorf("dataset load delay must not be negative")
	}

	if c.Dataset.RefreshInterval < 0 {
		return fmt.Errorf("dataset refresh interval must not be negative")
	}

	if c.Redis.Enabled() && c.Redis.Channel == "" {
		return fmt.Errorf("redis channel is required when redis is enabled")
	}

	return nil
}

// Helper functions

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseEnvAsInt64(key string, defaultValue int64) (int64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return intValue, nil
}

func parseEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return duration, nil
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
