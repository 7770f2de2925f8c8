package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, DATURA_CONFIG env, ./config.yaml, /etc/datura/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. DATURA_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/datura/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check DATURA_CONFIG env var.
	if envPath := os.Getenv("DATURA_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/datura/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps DATURA_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATURA_API_KEY"); v != "" {
		cfg.Datura.APIKey = v
	}
	if v := os.Getenv("DATURA_API_KEY_FILE"); v != "" {
		cfg.Datura.APIKeyFile = v
	}
	if v := os.Getenv("DATURA_BASE_URL"); v != "" {
		cfg.Datura.BaseURL = v
	}
	if v := os.Getenv("DATURA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Datura.Timeout = d
		}
	}
	if v := os.Getenv("DATURA_MCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MCP.Port = port
		}
	}
	if v := os.Getenv("DATURA_MCP_PATH"); v != "" {
		cfg.MCP.Path = v
	}
	if v := os.Getenv("DATURA_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("DATURA_METRICS_PATH"); v != "" {
		cfg.Observability.Metrics.Path = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. The value field wins when both are set.
func resolveFileReferences(cfg *Config) error {
	if cfg.Datura.APIKeyFile != "" && cfg.Datura.APIKey == "" {
		val, err := readSecretFile(cfg.Datura.APIKeyFile)
		if err != nil {
			return fmt.Errorf("datura.api_key_file: %w", err)
		}
		cfg.Datura.APIKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
