// Package config loads the collector configuration from a YAML file.
// Durations are expressed in integer seconds so the file stays plain
// YAML with no custom decoding.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level collector configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig points the coordinator at the remote service.
type BackendConfig struct {
	BaseURL              string `yaml:"base_url"`
	FreshnessSeconds     int    `yaml:"freshness_seconds"`
	HealthTimeoutSeconds int    `yaml:"health_timeout_seconds"`
	SendTimeoutSeconds   int    `yaml:"send_timeout_seconds"`
	PollIntervalSeconds  int    `yaml:"poll_interval_seconds"`
}

// ServerConfig controls the local message endpoint.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	MCP    bool   `yaml:"mcp"` // also serve tools over MCP stdio
}

// StorageConfig locates the agent database and sealing key.
type StorageConfig struct {
	DBPath        string `yaml:"db_path"`
	KeyPath       string `yaml:"key_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// ScrapeConfig controls the periodic scrape loop.
type ScrapeConfig struct {
	Pages           []string `yaml:"pages"`
	IntervalSeconds int      `yaml:"interval_seconds"`
	Source          string   `yaml:"source"` // browser | http
	Headful         bool     `yaml:"headful"`
	UserAgent       string   `yaml:"user_agent"`
	MaxTextLen      int      `yaml:"max_text_len"`
	Markdown        bool     `yaml:"markdown"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// LoadFile reads and validates a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.FreshnessSeconds <= 0 {
		c.Backend.FreshnessSeconds = 30
	}
	if c.Backend.HealthTimeoutSeconds <= 0 {
		c.Backend.HealthTimeoutSeconds = 5
	}
	if c.Backend.SendTimeoutSeconds <= 0 {
		c.Backend.SendTimeoutSeconds = 15
	}
	if c.Backend.PollIntervalSeconds <= 0 {
		c.Backend.PollIntervalSeconds = 30
	}
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8090"
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "collector.db"
	}
	if c.Storage.KeyPath == "" {
		c.Storage.KeyPath = "collector.key"
	}
	if c.Storage.RetentionDays <= 0 {
		c.Storage.RetentionDays = 14
	}
	if c.Scrape.IntervalSeconds <= 0 {
		c.Scrape.IntervalSeconds = 300
	}
	if c.Scrape.Source == "" {
		c.Scrape.Source = "http"
	}
	if c.Scrape.MaxTextLen <= 0 {
		c.Scrape.MaxTextLen = 3000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects configurations the agent cannot run with.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url is required")
	}
	switch c.Scrape.Source {
	case "http", "browser":
	default:
		return fmt.Errorf("config: scrape.source must be http or browser, got %q", c.Scrape.Source)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be debug/info/warn/error, got %q", c.Log.Level)
	}
	return nil
}

// Durations in time.Duration form for callers.

func (b BackendConfig) Freshness() time.Duration {
	return time.Duration(b.FreshnessSeconds) * time.Second
}

func (b BackendConfig) HealthTimeout() time.Duration {
	return time.Duration(b.HealthTimeoutSeconds) * time.Second
}

func (b BackendConfig) SendTimeout() time.Duration {
	return time.Duration(b.SendTimeoutSeconds) * time.Second
}

func (b BackendConfig) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalSeconds) * time.Second
}

func (s ScrapeConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}
