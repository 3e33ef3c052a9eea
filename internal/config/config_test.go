package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileOverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: memory
server:
  port: "9000"
dashboard:
  cache_ttl: 5s
oracle:
  api_key: ${TEST_GP_KEY}
`), 0o600))

	t.Setenv("TEST_GP_KEY", "secret")
	t.Setenv("REDIS_ADDR", "localhost:6380")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:9000", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "secret", cfg.Oracle.APIKey)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 7, cfg.Worker.ReminderWindowDays)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.Worker.ReminderInterval)
}
