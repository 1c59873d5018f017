package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all runtime configuration parameters
type Config struct {
	SeedURLs         []string `json:"seed_urls"`
	AllowedDomains   []string `json:"allowed_domains"`
	RestrictToDomain *bool    `json:"restrict_to_domain"`
	MaxDepth         int      `json:"max_depth"`
	MaxResults       int      `json:"max_results"`
	RequestTimeoutMs int      `json:"request_timeout_ms"`
	UserAgent        string   `json:"user_agent"`
	DBPath           string   `json:"db_path"`
	MetricsPath      string   `json:"metrics_path"`
}

// LoadConfig reads configuration from a JSON file. The result is not yet
// validated: callers may still override fields (e.g. from CLI flags) and
// must call Finalize before use.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Finalize applies defaults for unset fields and validates the result.
func (c *Config) Finalize() error {
	applyDefaults(c)

	if err := validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RestrictSessions reports whether seed crawls should restrict their
// session to the seed's domain. Unset means true.
func (c *Config) RestrictSessions() bool {
	if c.RestrictToDomain == nil {
		return true
	}
	return *c.RestrictToDomain
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 1
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 5000
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "webatlas.db"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.log"
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if len(cfg.SeedURLs) == 0 {
		return fmt.Errorf("at least one seed URL is required")
	}
	if cfg.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be >= 1")
	}
	if cfg.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0 (0 means unlimited)")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	return nil
}
