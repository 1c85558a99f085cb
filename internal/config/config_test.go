package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Empty(t, cfg.Catalog.CatalogFile)
	assert.Zero(t, cfg.Dataset.Seed)
	assert.Zero(t, cfg.Dataset.RefreshInterval)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_FILE", "/etc/portfolio/catalog.yaml")
	t.Setenv("DATASET_SEED", "1234")
	t.Setenv("DATASET_LOAD_DELAY", "500ms")
	t.Setenv("DATASET_REFRESH_INTERVAL", "1m")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "/etc/portfolio/catalog.yaml", cfg.Catalog.CatalogFile)
	assert.Equal(t, int64(1234), cfg.Dataset.Seed)
	assert.Equal(t, 500*time.Millisecond, cfg.Dataset.LoadDelay)
	assert.Equal(t, time.Minute, cfg.Dataset.RefreshInterval)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "portfolio:dataset", cfg.Redis.Channel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("port", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "70000")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative delay", func(t *testing.T) {
		t.Setenv("DATASET_LOAD_DELAY", "-1s")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed seed", func(t *testing.T) {
		t.Setenv("DATASET_SEED", "abc")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATASET_SEED")
	})

	t.Run("malformed refresh interval", func(t *testing.T) {
		t.Setenv("DATASET_REFRESH_INTERVAL", "soon")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATASET_REFRESH_INTERVAL")
	})

	t.Run("empty origins", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " , ")
		_, err := Load()
		assert.Error(t, err)
	})
}
