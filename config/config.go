// Package config loads the folio YAML configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/folio-motion/scheduler"
)

// DefaultPath is the configuration file looked up when --config is not given
const DefaultPath = ".folio/config.yaml"

// Config holds all folio configuration
type Config struct {
	// Frame loop period, a Go duration string
	FrameInterval string `yaml:"frame_interval"`

	// Marker attribute read by the delegation layer
	Attribute string `yaml:"attribute"`

	// Reject marker ids that are not in the catalog before dispatch
	ValidateIDs bool `yaml:"validate_ids"`

	// Scheduler priority of page load animations: critical, high, normal, low or idle
	LoadPriority string `yaml:"load_priority"`

	// SQLite database holding the low-power flag
	StorePath string `yaml:"store_path"`

	// YAML file with reduced_motion and hidden, watched at runtime
	PrefsFile string `yaml:"prefs_file"`

	// Log destination while the terminal is owned by the host
	LogFile string `yaml:"log_file"`

	Audio   AudioConfig   `yaml:"audio"`
	Catalog CatalogConfig `yaml:"catalog"`
}

// AudioConfig configures tone cues
type AudioConfig struct {
	Enabled    bool `yaml:"enabled"`
	SampleRate int  `yaml:"sample_rate"`
}

// CatalogConfig configures catalog generation
type CatalogConfig struct {
	// Seed for generated durations, 0 seeds from the clock
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		FrameInterval: "16ms",
		Attribute:     "data-animation-id",
		ValidateIDs:   true,
		LoadPriority:  "low",
		StorePath:     ".folio/prefs.db",
		PrefsFile:     ".folio/prefs.yaml",
		LogFile:       ".folio/folio.log",
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
		},
	}
}

// Load reads configuration from path, a missing file yields defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes configuration to path as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("FOLIO_STORE_PATH"); path != "" {
		c.StorePath = path
	}
	if path := os.Getenv("FOLIO_LOG_FILE"); path != "" {
		c.LogFile = path
	}
}

// FrameDuration returns the frame interval, falling back to 16ms when unparseable
func (c *Config) FrameDuration() time.Duration {
	d, err := time.ParseDuration(c.FrameInterval)
	if err != nil || d <= 0 {
		return 16 * time.Millisecond
	}
	return d
}

// Validate rejects configurations the host cannot run with
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.FrameInterval)
	if err != nil {
		return fmt.Errorf("invalid frame_interval %q: %w", c.FrameInterval, err)
	}
	if d <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %s", d)
	}
	if c.Attribute == "" {
		return fmt.Errorf("attribute must not be empty")
	}
	if _, err := scheduler.ParsePriority(c.LoadPriority); err != nil {
		return fmt.Errorf("invalid load_priority: %w", err)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive when audio is enabled")
	}
	return nil
}
