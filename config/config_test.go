package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16*time.Millisecond, cfg.FrameDuration())
	assert.Equal(t, "data-animation-id", cfg.Attribute)
	assert.True(t, cfg.ValidateIDs)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().PrefsFile, cfg.PrefsFile)
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.FrameInterval = "33ms"
	cfg.ValidateIDs = false
	cfg.Catalog.Seed = 42

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 33*time.Millisecond, loaded.FrameDuration())
	assert.False(t, loaded.ValidateIDs)
	assert.Equal(t, uint64(42), loaded.Catalog.Seed)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attribute: data-fx\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data-fx", cfg.Attribute)
	assert.Equal(t, "16ms", cfg.FrameInterval)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attribute: [unclosed\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_STORE_PATH", "/tmp/custom.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.StorePath)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.FrameInterval = "0s" }},
		{"negative interval", func(c *Config) { c.FrameInterval = "-5ms" }},
		{"bad interval", func(c *Config) { c.FrameInterval = "fast" }},
		{"empty attribute", func(c *Config) { c.Attribute = "" }},
		{"unknown load priority", func(c *Config) { c.LoadPriority = "urgent" }},
		{"no sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
