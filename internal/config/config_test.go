package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.PublishTickMillis)
	assert.Equal(t, 1024, cfg.OutboundCapacity)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.PublishTickMillis)
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publishTickMillis: 5\ncatalogueSource: /data/events.csv\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.PublishTickMillis)
	assert.Equal(t, "/data/events.csv", cfg.CatalogueSource)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publishTickMillis: 5\n"), 0o644))

	t.Setenv("MDREPLAY_PUBLISH_TICK_MILLIS", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(20), cfg.PublishTickMillis)
}

func TestLoad_EnvAllowedOriginsSplitsOnComma(t *testing.T) {
	t.Setenv("MDREPLAY_HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}
