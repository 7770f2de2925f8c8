// Package config provides unified configuration for the datura-go commands.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (DATURA_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// The SDK itself takes a plain datura.Config; this package only serves the
// binaries under cmd/.
package config

import "time"

// Config holds all configuration for the datura-go commands.
type Config struct {
	Datura        DaturaConfig        `yaml:"datura"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DaturaConfig holds Datura API client settings.
type DaturaConfig struct {
	APIKey     string        `yaml:"api_key"`      // required
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
	BaseURL    string        `yaml:"base_url"`     // default: https://apis.datura.ai
	Timeout    time.Duration `yaml:"timeout"`      // default: 120s
}

// MCPConfig holds settings for the MCP server binary.
type MCPConfig struct {
	Port int    `yaml:"port"` // default: 8080
	Path string `yaml:"path"` // default: "/mcp"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Datura: DaturaConfig{
			BaseURL: "https://apis.datura.ai",
			Timeout: 120 * time.Second,
		},
		MCP: MCPConfig{
			Port: 8080,
			Path: "/mcp",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
