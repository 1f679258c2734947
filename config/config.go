// Package config loads docstore settings from YAML with environment
// overrides and builds the process logger from them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvUseEmulator = "DOCSTORE_USE_EMULATOR"
	EnvSQLitePath  = "DOCSTORE_SQLITE_PATH"
	EnvLogLevel    = "DOCSTORE_LOG_LEVEL"
)

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted logging formats.
var ValidLogFormats = []string{"json", "console"}

// Config holds all docstore configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Events  EventsConfig  `yaml:"events"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig selects the storage behind the store.
type BackendConfig struct {
	// UseEmulator keeps everything in memory. When false the SQLite driver
	// stands in for the real database.
	UseEmulator bool   `yaml:"use_emulator"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// EventsConfig controls operation events.
type EventsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			UseEmulator: true,
			SQLitePath:  "data/docstore.db",
		},
		Events: EventsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults;
// environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

// applyEnvOverrides applies environment variable overrides. Unparseable
// booleans are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvUseEmulator); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Backend.UseEmulator = b
		}
	}
	if v := os.Getenv(EnvSQLitePath); v != "" {
		c.Backend.SQLitePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration for values the store cannot run with.
func (c *Config) Validate() error {
	if !c.Backend.UseEmulator && c.Backend.SQLitePath == "" {
		return fmt.Errorf("sqlite path not configured (set backend.sqlite_path or %s)", EnvSQLitePath)
	}
	if !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !slices.Contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	return nil
}
