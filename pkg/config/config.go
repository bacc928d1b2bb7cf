// Package config loads adwatch client configuration from the config file
// and environment. The file lives at ~/.adwatch/config.toml unless
// ADWATCH_CONFIG points elsewhere; environment variables override file
// values so one-off workspace switches don't require editing the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultFilter         = "all"
	DefaultRefreshSeconds = 30
)

// Config holds backend connection settings and feed defaults.
type Config struct {
	// BaseURL is the backend API root, e.g. https://api.example.com.
	BaseURL string `toml:"base_url"`
	// Token is the bearer token; empty for unauthenticated backends.
	Token string `toml:"token"`
	// Workspace is the workspace id all feed calls are scoped to.
	Workspace string `toml:"workspace"`
	// Filter is the feed filter applied on startup: all, triggered or error.
	Filter string `toml:"filter"`
	// RefreshSeconds is the dashboard auto-refresh interval.
	RefreshSeconds int `toml:"refresh_seconds"`
}

// DefaultPath returns the config file location: $ADWATCH_CONFIG if set,
// otherwise ~/.adwatch/config.toml.
func DefaultPath() (string, error) {
	if v := os.Getenv("ADWATCH_CONFIG"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".adwatch", "config.toml"), nil
}

// Load reads the config file at path, applies environment overrides, and
// fills defaults. A missing file is not an error: the environment alone can
// carry a complete configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own config location
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No file; environment and defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks that the settings required to reach the backend are set.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url not configured (set ADWATCH_BASE_URL or base_url in config.toml)")
	}
	if c.Workspace == "" {
		return errors.New("workspace not configured (set ADWATCH_WORKSPACE or workspace in config.toml)")
	}
	return nil
}

// applyEnv overrides file values with ADWATCH_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("ADWATCH_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ADWATCH_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("ADWATCH_WORKSPACE"); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv("ADWATCH_FILTER"); v != "" {
		c.Filter = v
	}
	if v := os.Getenv("ADWATCH_REFRESH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RefreshSeconds = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Filter == "" {
		c.Filter = DefaultFilter
	}
	if c.RefreshSeconds <= 0 {
		c.RefreshSeconds = DefaultRefreshSeconds
	}
}
