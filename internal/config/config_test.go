package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30000, cfg.API.TimeoutMs)
	assert.Equal(t, 300000, cfg.API.LongTimeoutMs)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{".pdf", ".docx", ".doc"}, cfg.Upload.Extensions)
	assert.Equal(t, 2000, cfg.Upload.PollIntervalMs)
	assert.Equal(t, 30, cfg.Upload.MaxPollAttempts)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, filepath.Join(Dir(), "reqplan.db"), cfg.Storage.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("REQPLAN_API_BASE_URL", "https://planner.example.com")
	t.Setenv("REQPLAN_API_MAX_RETRIES", "5")
	t.Setenv("REQPLAN_LOGGING_FORMAT", "json")
	t.Setenv("REQPLAN_UPLOAD_EXTENSIONS", "PDF txt")

	cfg, err := Load(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, "https://planner.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{".pdf", ".txt"}, cfg.Upload.Extensions)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "reqplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://backend:9000
  timeout_ms: 5000
upload:
  max_poll_attempts: 3
`), 0o644))

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.API.BaseURL)
	assert.Equal(t, 5000, cfg.API.TimeoutMs)
	assert.Equal(t, 300000, cfg.API.LongTimeoutMs, "unset keys keep defaults")
	assert.Equal(t, 3, cfg.Upload.MaxPollAttempts)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "reqplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://from-file:1\n"), 0o644))
	t.Setenv("REQPLAN_API_BASE_URL", "http://from-env:2")

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:2", cfg.API.BaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(NewViper(filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("REQPLAN_API_BASE_URL", "ftp://x")
	t.Setenv("REQPLAN_LOGGING_LEVEL", "loud")

	_, err := Load(NewViper(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.TimeoutMs = 0
	cfg.API.MaxRetries = -1
	cfg.Upload.MaxBytes = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"api.timeout_ms", "api.max_retries", "upload.max_bytes", "logging.format"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDir_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "reqplan"), Dir())
}
