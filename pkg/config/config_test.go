package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithEnv("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, EngineMemory, cfg.Engine)
	assert.Equal(t, 30, cfg.Catalogue.DefaultLimit)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listenAddress: ":9000"
engine: postgres
postgres:
  url: postgres://localhost/catalogue
redis:
  addr: localhost:6379
  ttl: 30s
catalogue:
  defaultLimit: 24
  defaultCurrency: EUR
`), 0o644))

	cfg, err := LoadWithEnv(path, env(map[string]string{
		"LISTEN_ADDRESS": ":7000",
		"MAX_LIMIT":      "48",
		"CACHE_TTL":      "1m",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddress)
	assert.Equal(t, EnginePostgres, cfg.Engine)
	assert.Equal(t, "postgres://localhost/catalogue", cfg.Postgres.URL)
	assert.Equal(t, "products", cfg.Postgres.ProductsTable)
	assert.Equal(t, 24, cfg.Catalogue.DefaultLimit)
	assert.Equal(t, 48, cfg.Catalogue.MaxLimit)
	assert.Equal(t, "EUR", cfg.Catalogue.DefaultCurrency)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := LoadWithEnv("", env(map[string]string{"ENGINE": "mongo"}))
	assert.Error(t, err)

	_, err = LoadWithEnv("", env(map[string]string{"ENGINE": "postgres"}))
	assert.Error(t, err)

	_, err = LoadWithEnv("", env(map[string]string{"MAX_LIMIT": "many"}))
	assert.Error(t, err)

	_, err = LoadWithEnv("", env(map[string]string{"MAX_LIMIT": "10"}))
	assert.Error(t, err)

	_, err = LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.Error(t, err)
}
