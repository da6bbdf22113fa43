package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for saved timers
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds user settings loaded from config.yaml
type Config struct {
	DataDir      string        `yaml:"data_dir"`
	Backend      string        `yaml:"backend"`
	Theme        string        `yaml:"theme"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Alarm        bool          `yaml:"alarm"`
	Notify       bool          `yaml:"notify"`
}

// DefaultConfig returns the settings used when no file exists
func DefaultConfig() *Config {
	return &Config{
		DataDir:      defaultDataDir(),
		Backend:      BackendSQLite,
		Theme:        "dark",
		TickInterval: time.Second,
		Alarm:        true,
		Notify:       true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tminus/config.yaml or its
// ~/.config fallback
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tminus", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tminus.yaml"
	}
	return filepath.Join(home, ".config", "tminus", "config.yaml")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tminus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tminus"
	}
	return filepath.Join(home, ".local", "share", "tminus")
}

// Load reads the config at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Unset keys keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated fields and ranges
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendFile)
	}
	if c.TickInterval < 10*time.Millisecond {
		return fmt.Errorf("tick_interval %s is too short", c.TickInterval)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty")
	}
	return nil
}

// DBPath returns the SQLite file inside the data directory
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "tminus.db")
}

// LockPath returns the single-instance lock file inside the data directory
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "tminus.lock")
}
