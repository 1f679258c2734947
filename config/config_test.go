package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Backend.UseEmulator)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  use_emulator: false
  sqlite_path: /tmp/photos.db
logging:
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Backend.UseEmulator)
	assert.Equal(t, "/tmp/photos.db", cfg.Backend.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Events.Enabled)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		emulator bool
		path     string
		level    string
	}{
		{
			name:     "flag off",
			env:      map[string]string{EnvUseEmulator: "false"},
			emulator: false,
			path:     "data/docstore.db",
			level:    "info",
		},
		{
			name:     "path and level",
			env:      map[string]string{EnvSQLitePath: "/var/lib/docstore.db", EnvLogLevel: "WARN"},
			emulator: true,
			path:     "/var/lib/docstore.db",
			level:    "warn",
		},
		{
			name:     "unparseable flag ignored",
			env:      map[string]string{EnvUseEmulator: "maybe"},
			emulator: true,
			path:     "data/docstore.db",
			level:    "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			assert.Equal(t, tt.emulator, cfg.Backend.UseEmulator)
			assert.Equal(t, tt.path, cfg.Backend.SQLitePath)
			assert.Equal(t, tt.level, cfg.Logging.Level)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docstore.yaml")
	cfg := DefaultConfig()
	cfg.Backend.UseEmulator = false
	cfg.Logging.Format = "json"

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite without path", func(c *Config) { c.Backend.UseEmulator = false; c.Backend.SQLitePath = "" }, true},
		{"emulator without path", func(c *Config) { c.Backend.SQLitePath = "" }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig_NewLogger(t *testing.T) {
	for _, format := range ValidLogFormats {
		logger, err := LoggingConfig{Level: "debug", Format: format}.NewLogger()
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}

	_, err := LoggingConfig{Level: "loud", Format: "json"}.NewLogger()
	assert.Error(t, err)

	_, err = LoggingConfig{Level: "info", Format: "xml"}.NewLogger()
	assert.Error(t, err)
}
