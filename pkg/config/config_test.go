package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"#nifty50", "#sensex", "#intraday", "#banknifty"}, cfg.Collect.Tags)
	assert.Equal(t, 2000, cfg.Collect.MinRecords)
	assert.Equal(t, 8, cfg.Collect.MaxSessions)
	assert.Equal(t, 30, cfg.Collect.AttemptLimit)
	assert.Equal(t, 50, cfg.Collect.StallLimit)
	assert.True(t, cfg.Browser.Headless)
	assert.NotEmpty(t, cfg.Browser.UserAgents)
}

func TestPerTagTarget(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 500, cfg.Collect.PerTagTarget())

	cfg.Collect.Tags = []string{"#one", "#two", "#three"}
	cfg.Collect.MinRecords = 100
	assert.Equal(t, 33, cfg.Collect.PerTagTarget())

	cfg.Collect.Tags = nil
	assert.Equal(t, 100, cfg.Collect.PerTagTarget())
}

func TestTimeWindow(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 24*time.Hour, cfg.Collect.TimeWindow())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no tags", func(c *Config) { c.Collect.Tags = nil }},
		{"blank tag", func(c *Config) { c.Collect.Tags = []string{"#ok", "  "} }},
		{"zero min records", func(c *Config) { c.Collect.MinRecords = 0 }},
		{"zero max sessions", func(c *Config) { c.Collect.MaxSessions = 0 }},
		{"zero attempt limit", func(c *Config) { c.Collect.AttemptLimit = 0 }},
		{"zero stall limit", func(c *Config) { c.Collect.StallLimit = 0 }},
		{"no query placeholder", func(c *Config) { c.Collect.SearchURL = "https://example.com/search" }},
		{"inverted settle range", func(c *Config) { c.Collect.Settle.ScrollMin = 5; c.Collect.Settle.ScrollMax = 1 }},
		{"zero page timeout", func(c *Config) { c.Browser.PageLoadTimeout = 0 }},
		{"no user agents", func(c *Config) { c.Browser.UserAgents = nil }},
		{"no storage path", func(c *Config) { c.Storage.Path = "" }},
		{"zero max features", func(c *Config) { c.Signal.MaxFeatures = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TAGSIGNAL_TAGS", "#alpha, #beta")
	t.Setenv("TAGSIGNAL_MIN_RECORDS", "300")
	t.Setenv("TAGSIGNAL_MAX_SESSIONS", "2")
	t.Setenv("TAGSIGNAL_HEADLESS", "false")
	t.Setenv("TAGSIGNAL_STORAGE_PATH", "/tmp/override.db")
	t.Setenv("TAGSIGNAL_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, []string{"#alpha", "#beta"}, cfg.Collect.Tags)
	assert.Equal(t, 300, cfg.Collect.MinRecords)
	assert.Equal(t, 2, cfg.Collect.MaxSessions)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"tags":         []string{"#solo"},
		"min-records":  50,
		"max-sessions": 3,
		"headless":     false,
		"storage-path": "custom.db",
		"log-level":    "warn",
	})

	assert.Equal(t, []string{"#solo"}, cfg.Collect.Tags)
	assert.Equal(t, 50, cfg.Collect.MinRecords)
	assert.Equal(t, 3, cfg.Collect.MaxSessions)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "custom.db", cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
collect:
  tags: ["#filetag"]
  min_records: 400
storage:
  path: file.db
`)
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, []string{"#filetag"}, cfg.Collect.Tags)
	assert.Equal(t, 400, cfg.Collect.MinRecords)
	assert.Equal(t, "file.db", cfg.Storage.Path)
	// Untouched sections keep their defaults
	assert.Equal(t, 8, cfg.Collect.MaxSessions)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	original := DefaultConfig()
	original.Collect.Tags = []string{"#roundtrip"}
	require.NoError(t, original.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, []string{"#roundtrip"}, loaded.Collect.Tags)
}
