package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "Inventory", cfg.ImportSheet)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("IMPORT_SHEET", "Stock")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CURRENCY", "eur")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "Stock", cfg.ImportSheet)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coastalwaves.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /from/file.db\nlog_level: debug\ncurrency: GBP\n"), 0o600))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/from/file.db", cfg.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	assert.Equal(t, "GBP", cfg.Currency)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CURRENCY", "XXXX")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
