// Package config loads platefinder configuration.
//
// Precedence, lowest to highest: built-in defaults, ~/.platefinder/config.yaml,
// a .env file in the working directory, then process environment variables
// (PLATE_*). The file and the .env layer are both optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all platefinder configuration.
type Config struct {
	// API configures the remote restaurant service.
	API APIConfig `yaml:"api"`

	// Geo configures the location collaborators.
	Geo GeoConfig `yaml:"geo"`

	// Logging configures the file logger.
	Logging LoggingConfig `yaml:"logging"`

	// StateDir is where durable client state (session file, logs) lives.
	// Defaults to ~/.platefinder.
	StateDir string `yaml:"state_dir"`

	// Theme selects the UI palette: auto, light or dark.
	Theme string `yaml:"theme"`
}

// APIConfig configures the remote restaurant-recommendation API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// GeoConfig configures geolocation and reverse geocoding. Both are
// best-effort collaborators; lookups are bounded by Timeout.
type GeoConfig struct {
	LocateURL  string `yaml:"locate_url"`
	ReverseURL string `yaml:"reverse_url"`
	Timeout    string `yaml:"timeout"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: "30s",
		},
		Geo: GeoConfig{
			LocateURL:  "http://ip-api.com/json",
			ReverseURL: "https://nominatim.openstreetmap.org/reverse",
			Timeout:    "5s",
		},
		Logging: LoggingConfig{Level: "info"},
		StateDir: filepath.Join(home, ".platefinder"),
		Theme:    "auto",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".platefinder", "config.yaml")
}

// Load builds the effective configuration. A missing config file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// .env in the working directory, if present. Populates the process
	// environment without overriding variables already set.
	_ = godotenv.Load()

	cfg.applyEnvOverrides()

	if cfg.StateDir == "" {
		cfg.StateDir = Default().StateDir
	}
	return cfg, nil
}

// applyEnvOverrides layers PLATE_* environment variables over the config.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PLATE_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PLATE_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("PLATE_GEO_LOCATE_URL"); v != "" {
		c.Geo.LocateURL = v
	}
	if v := os.Getenv("PLATE_GEO_REVERSE_URL"); v != "" {
		c.Geo.ReverseURL = v
	}
	if v := os.Getenv("PLATE_GEO_TIMEOUT"); v != "" {
		c.Geo.Timeout = v
	}
	if v := os.Getenv("PLATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PLATE_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("PLATE_THEME"); v != "" {
		c.Theme = v
	}
}

// APITimeout parses the API timeout, falling back to 30s.
func (c *Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 30*time.Second)
}

// GeoTimeout parses the geolocation timeout, falling back to 5s.
func (c *Config) GeoTimeout() time.Duration {
	return parseDuration(c.Geo.Timeout, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
