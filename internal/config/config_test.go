package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fandomia/internal/config"
)

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "fandomia.db", cfg.DBDSN)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.NotEmpty(t, cfg.DeviceDir)
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fandomia.yaml")
	yml := "port: \"9090\"\ndb_dsn: shop.db\nlog_level: debug\nhttp_timeout: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "env.db")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "env.db", cfg.DBDSN, "env must win over file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestLoadFile_BadYAMLStillUsable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [oops"), 0o600))
	t.Setenv("PORT", "")

	cfg, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Equal(t, "8080", cfg.Port)
}
