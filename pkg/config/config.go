package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure for the data API client.
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	DataAPI       DataAPIConfig       `mapstructure:"data_api"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServiceConfig identifies the consuming service.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DataAPIConfig holds the connection parameters for the remote data API.
type DataAPIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	DataSource string `mapstructure:"data_source"`
	Database   string `mapstructure:"database"`
	APIKey     string `mapstructure:"api_key"`
	// RequestTimeout bounds one dispatch when the caller wraps it; the
	// dispatcher itself applies no timeout.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ObservabilityConfig holds logging configuration.
type ObservabilityConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "dataapi",
			Environment: "development",
		},
		DataAPI: DataAPIConfig{
			RequestTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks that all required fields are present and consistent.
// All violations are reported at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DataAPI.BaseURL) == "" {
		problems = append(problems, "data_api.base_url is required")
	}
	if strings.TrimSpace(c.DataAPI.DataSource) == "" {
		problems = append(problems, "data_api.data_source is required")
	}
	if strings.TrimSpace(c.DataAPI.Database) == "" {
		problems = append(problems, "data_api.database is required")
	}
	if strings.TrimSpace(c.DataAPI.APIKey) == "" {
		problems = append(problems, "data_api.api_key is required")
	}
	if c.DataAPI.RequestTimeout < 0 {
		problems = append(problems, "data_api.request_timeout must not be negative")
	}

	switch c.Observability.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("observability.log_level %q is not valid", c.Observability.LogLevel))
	}
	switch c.Observability.LogFormat {
	case "", "json", "text", "console":
	default:
		problems = append(problems, fmt.Sprintf("observability.log_format %q is not valid", c.Observability.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
