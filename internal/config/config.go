package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Database DatabaseConfig `yaml:"database"`
	Discogs  DiscogsConfig  `yaml:"discogs"`
	Scan     ScanConfig     `yaml:"scan"`
	Insight  InsightConfig  `yaml:"insight"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LibraryConfig holds music library path settings.
type LibraryConfig struct {
	Root string `yaml:"root"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DiscogsConfig holds Discogs API access settings.
type DiscogsConfig struct {
	Token string `yaml:"token"`
}

// ScanConfig holds scan driver settings.
type ScanConfig struct {
	// DelaySeconds is the pause between consecutive searches.
	// Values below 1 are raised to 1 at load time.
	DelaySeconds int `yaml:"delay_seconds"`
}

// InsightConfig holds settings for the optional annotation generator.
// An empty APIKey disables annotation entirely.
type InsightConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "discmatch", "config.yaml")
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(xdg.DataHome, "discmatch", "discmatch.db"),
		},
		Scan: ScanConfig{
			DelaySeconds: 1,
		},
		Insight: InsightConfig{
			BaseURL:        "https://openrouter.ai/api/v1/chat/completions",
			Model:          "openai/gpt-4o-mini",
			TimeoutSeconds: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the --config flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("DM_LIBRARY_ROOT"); v != "" {
		c.Library.Root = v
	}
	if v := os.Getenv("DM_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DM_DISCOGS_TOKEN"); v != "" {
		c.Discogs.Token = v
	}
	if v := os.Getenv("DM_SCAN_DELAY"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Scan.DelaySeconds = secs
		}
	}
	if v := os.Getenv("DM_INSIGHT_API_KEY"); v != "" {
		c.Insight.APIKey = v
	}
	if v := os.Getenv("DM_INSIGHT_BASE_URL"); v != "" {
		c.Insight.BaseURL = v
	}
	if v := os.Getenv("DM_INSIGHT_MODEL"); v != "" {
		c.Insight.Model = v
	}
	if v := os.Getenv("DM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	// The Discogs API allows roughly one request per second; the driver
	// never goes below that regardless of what the config asks for.
	if c.Scan.DelaySeconds < 1 {
		c.Scan.DelaySeconds = 1
	}
	if c.Insight.TimeoutSeconds <= 0 {
		c.Insight.TimeoutSeconds = 15
	}
	return nil
}

// ScanDelay returns the inter-request delay as a duration.
func (c *Config) ScanDelay() time.Duration {
	return time.Duration(c.Scan.DelaySeconds) * time.Second
}
