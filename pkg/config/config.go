package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the tagsignal collector
type Config struct {
	Collect CollectConfig `yaml:"collect" json:"collect"`
	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Signal  SignalConfig  `yaml:"signal" json:"signal"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CollectConfig holds the collection-engine settings
type CollectConfig struct {
	// Tags are the topic tags searched against the feed, e.g. "#nifty50".
	Tags []string `yaml:"tags" json:"tags"`

	// MinRecords is the soft target for the whole run. The per-tag target
	// is MinRecords / len(Tags); falling short is a warning, not an error.
	MinRecords int `yaml:"min_records" json:"min_records"`

	// TimeWindowHours is accepted and logged but does not filter records
	// by age.
	TimeWindowHours int `yaml:"time_window_hours" json:"time_window_hours"`

	// MaxSessions bounds the number of browsing sessions open at once.
	MaxSessions int `yaml:"max_sessions" json:"max_sessions"`

	// AttemptLimit bounds loop iterations per tag; StallLimit bounds
	// consecutive scrolls without page growth. The feed never signals
	// end-of-results explicitly, so these are the only exit evidence.
	AttemptLimit int `yaml:"attempt_limit" json:"attempt_limit"`
	StallLimit   int `yaml:"stall_limit" json:"stall_limit"`

	// SearchURL is the results-view URL template; {query} is replaced by
	// the escaped tag query.
	SearchURL string `yaml:"search_url" json:"search_url"`

	Settle SettleConfig `yaml:"settle" json:"settle"`
}

// SettleConfig holds the randomized wait ranges, in seconds. Jitter lets
// asynchronous content finish loading and keeps the traffic pattern from
// looking mechanical.
type SettleConfig struct {
	InitialMin float64 `yaml:"initial_min" json:"initial_min"`
	InitialMax float64 `yaml:"initial_max" json:"initial_max"`
	ScrollMin  float64 `yaml:"scroll_min" json:"scroll_min"`
	ScrollMax  float64 `yaml:"scroll_max" json:"scroll_max"`
	MissMin    float64 `yaml:"miss_min" json:"miss_min"`
	MissMax    float64 `yaml:"miss_max" json:"miss_max"`
	FaultMin   float64 `yaml:"fault_min" json:"fault_min"`
	FaultMax   float64 `yaml:"fault_max" json:"fault_max"`
}

// BrowserConfig holds the driven-browser settings
type BrowserConfig struct {
	Headless         bool          `yaml:"headless" json:"headless"`
	ExecPath         string        `yaml:"exec_path" json:"exec_path"`
	PageLoadTimeout  time.Duration `yaml:"page_load_timeout" json:"page_load_timeout"`
	LoginTimeout     time.Duration `yaml:"login_timeout" json:"login_timeout"`
	ActionsPerMinute int           `yaml:"actions_per_minute" json:"actions_per_minute"`
	UserAgents       []string      `yaml:"user_agents" json:"user_agents"`
}

// StorageConfig holds the record-sink settings
type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

// SignalConfig holds the text-to-signal settings
type SignalConfig struct {
	MaxFeatures int `yaml:"max_features" json:"max_features"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Collect: CollectConfig{
			Tags:            []string{"#nifty50", "#sensex", "#intraday", "#banknifty"},
			MinRecords:      2000,
			TimeWindowHours: 24,
			MaxSessions:     8,
			AttemptLimit:    30,
			StallLimit:      50,
			SearchURL:       "https://twitter.com/search?q={query}&src=typed_query&f=live",
			Settle: SettleConfig{
				InitialMin: 3, InitialMax: 6,
				ScrollMin: 2.5, ScrollMax: 3.5,
				MissMin: 2, MissMax: 5,
				FaultMin: 3, FaultMax: 7,
			},
		},
		Browser: BrowserConfig{
			Headless:         true,
			PageLoadTimeout:  60 * time.Second,
			LoginTimeout:     30 * time.Second,
			ActionsPerMinute: 30,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Safari/605.1.15",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			},
		},
		Storage: StorageConfig{
			Path: "tagsignal.db",
		},
		Signal: SignalConfig{
			MaxFeatures: 256,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// PerTagTarget returns the soft collection target for a single tag.
func (c *CollectConfig) PerTagTarget() int {
	if len(c.Tags) == 0 {
		return c.MinRecords
	}
	return c.MinRecords / len(c.Tags)
}

// TimeWindow returns the configured collection window as a duration.
func (c *CollectConfig) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowHours) * time.Hour
}

// LoadFromEnv loads configuration overrides from environment variables
func (c *Config) LoadFromEnv() error {
	if tags := os.Getenv("TAGSIGNAL_TAGS"); tags != "" {
		var parsed []string
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				parsed = append(parsed, t)
			}
		}
		if len(parsed) > 0 {
			c.Collect.Tags = parsed
		}
	}
	if v := os.Getenv("TAGSIGNAL_MIN_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Collect.MinRecords = n
		}
	}
	if v := os.Getenv("TAGSIGNAL_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Collect.MaxSessions = n
		}
	}
	if v := os.Getenv("TAGSIGNAL_HEADLESS"); v != "" {
		c.Browser.Headless = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("TAGSIGNAL_BROWSER_PATH"); v != "" {
		c.Browser.ExecPath = v
	}
	if v := os.Getenv("TAGSIGNAL_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("TAGSIGNAL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tagsignal.yaml",
		".tagsignal.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tagsignal", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tagsignal", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tagsignal.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if len(c.Collect.Tags) == 0 {
		errs = append(errs, errors.New("at least one topic tag is required"))
	}
	for _, tag := range c.Collect.Tags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, errors.New("topic tags must not be blank"))
			break
		}
	}
	if c.Collect.MinRecords <= 0 {
		errs = append(errs, errors.New("min records must be positive"))
	}
	if c.Collect.MaxSessions <= 0 {
		errs = append(errs, errors.New("max sessions must be positive"))
	}
	if c.Collect.AttemptLimit <= 0 {
		errs = append(errs, errors.New("attempt limit must be positive"))
	}
	if c.Collect.StallLimit <= 0 {
		errs = append(errs, errors.New("stall limit must be positive"))
	}
	if !strings.Contains(c.Collect.SearchURL, "{query}") {
		errs = append(errs, errors.New("search url must contain the {query} placeholder"))
	}
	if s := c.Collect.Settle; s.InitialMin < 0 || s.InitialMax < s.InitialMin ||
		s.ScrollMin < 0 || s.ScrollMax < s.ScrollMin ||
		s.MissMin < 0 || s.MissMax < s.MissMin ||
		s.FaultMin < 0 || s.FaultMax < s.FaultMin {
		errs = append(errs, errors.New("settle ranges must be non-negative with max >= min"))
	}
	if c.Browser.PageLoadTimeout <= 0 {
		errs = append(errs, errors.New("page load timeout must be positive"))
	}
	if c.Browser.ActionsPerMinute <= 0 {
		errs = append(errs, errors.New("actions per minute must be positive"))
	}
	if len(c.Browser.UserAgents) == 0 {
		errs = append(errs, errors.New("at least one user agent is required"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage path is required"))
	}
	if c.Signal.MaxFeatures <= 0 {
		errs = append(errs, errors.New("signal max features must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if tags, ok := flags["tags"].([]string); ok && len(tags) > 0 {
		c.Collect.Tags = tags
	}
	if min, ok := flags["min-records"].(int); ok && min > 0 {
		c.Collect.MinRecords = min
	}
	if sessions, ok := flags["max-sessions"].(int); ok && sessions > 0 {
		c.Collect.MaxSessions = sessions
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if path, ok := flags["storage-path"].(string); ok && path != "" {
		c.Storage.Path = path
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tagsignal.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
