package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, "styles", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 16, cfg.Driver.FrameIntervalMS)
	assert.Equal(t, 64, cfg.Driver.HistorySize)
	assert.Equal(t, "rules/", cfg.Stylesheet.Prefix)
	assert.Equal(t, "bundle.css", cfg.Stylesheet.BundleName)
}

func TestLoadConfig_EnvAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DRIVER_FRAME_INTERVAL_MS=40\nSTYLESHEET_ENABLED=true\n"), 0o600))

	// Registered so the values written by the .env file are restored.
	t.Setenv("DRIVER_FRAME_INTERVAL_MS", "")
	t.Setenv("STYLESHEET_ENABLED", "")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_ENABLED", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 40, cfg.Driver.FrameIntervalMS)
	assert.True(t, cfg.Stylesheet.Enabled)
}
