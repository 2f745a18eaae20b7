package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load runs without a config file here, so everything comes from defaults.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3456, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Settings must persist even when no config file names a path; an empty
	// path would make every save fail silently at shutdown.
	assert.NotEmpty(t, cfg.Settings.Path)
	assert.Contains(t, cfg.Settings.Path, "brightpanel")

	assert.NotEmpty(t, cfg.Database.Path)
	assert.Equal(t, 100, cfg.Database.HistoryLimit)
}

func TestDurationHelpers(t *testing.T) {
	var cfg Config

	// Empty strings fall back
	assert.Equal(t, 10*time.Second, cfg.Detection.TimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.Control.TimeoutDuration())
	assert.Equal(t, 150*time.Millisecond, cfg.Panel.DebounceDuration())
	assert.Equal(t, 5*time.Second, cfg.System.ProbeDuration())
	assert.Equal(t, 30*24*time.Hour, cfg.Database.RetentionDuration())

	cfg.Panel.DebounceWindow = "300ms"
	assert.Equal(t, 300*time.Millisecond, cfg.Panel.DebounceDuration())

	cfg.Database.HistoryRetention = "48h"
	assert.Equal(t, 48*time.Hour, cfg.Database.RetentionDuration())

	// Garbage also falls back
	cfg.Control.Timeout = "soon"
	assert.Equal(t, 5*time.Second, cfg.Control.TimeoutDuration())
}

func TestDefaultSettingsPathNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, defaultSettingsPath())
}
