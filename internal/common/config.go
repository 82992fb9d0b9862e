// Package common provides shared utilities for salesdash
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for salesdash
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Data        DataConfig      `toml:"data"`
	Export      ExportConfig    `toml:"export"`
	Charts      ChartsConfig    `toml:"charts"`
	RateLimit   RateLimitConfig `toml:"ratelimit"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DataConfig describes the sales dataset source.
type DataConfig struct {
	Path      string `toml:"path"`
	Delimiter string `toml:"delimiter"` // single character, default ","
	Encoding  string `toml:"encoding"`  // "utf-8", "latin1" or "windows-1252"
}

// DelimiterRune returns the configured field separator, falling back to a comma.
func (c DataConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	if c.Delimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// ExportConfig holds settings for the CSV download.
type ExportConfig struct {
	Filename string `toml:"filename"`
}

// ChartsConfig holds the rendered chart dimensions in pixels.
type ChartsConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// RateLimitConfig throttles the expensive endpoints (chart rendering, download).
// RequestsPerSecond <= 0 disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8501,
		},
		Data: DataConfig{
			Path:      "Sample - Superstore.csv",
			Delimiter: ",",
			Encoding:  "utf-8",
		},
		Export: ExportConfig{
			Filename: "sales_report.csv",
		},
		Charts: ChartsConfig{
			Width:  800,
			Height: 450,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SALESDASH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SALESDASH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SALESDASH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SALESDASH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("SALESDASH_DATA_PATH"); path != "" {
		config.Data.Path = path
	}

	if enc := os.Getenv("SALESDASH_DATA_ENCODING"); enc != "" {
		config.Data.Encoding = enc
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path must be set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if utf8.RuneCountInString(c.Data.Delimiter) > 1 && c.Data.Delimiter != `\t` {
		return fmt.Errorf("data.delimiter must be a single character, got %q", c.Data.Delimiter)
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return fmt.Errorf("charts.width and charts.height must be positive")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
