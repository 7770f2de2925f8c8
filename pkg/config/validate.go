package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// datura.api_key is required (directly or via api_key_file).
	if c.Datura.APIKey == "" {
		errs = append(errs, fmt.Errorf("datura.api_key is required"))
	}

	// datura.base_url must look like an HTTP(S) URL.
	if c.Datura.BaseURL != "" &&
		!strings.HasPrefix(c.Datura.BaseURL, "http://") &&
		!strings.HasPrefix(c.Datura.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("datura.base_url must start with http:// or https://, got %q", c.Datura.BaseURL))
	}

	// datura.timeout must not be negative.
	if c.Datura.Timeout < 0 {
		errs = append(errs, fmt.Errorf("datura.timeout must be >= 0, got %s", c.Datura.Timeout))
	}

	// mcp.port must be positive.
	if c.MCP.Port <= 0 {
		errs = append(errs, fmt.Errorf("mcp.port must be > 0, got %d", c.MCP.Port))
	}

	// mcp.path must be rooted.
	if !strings.HasPrefix(c.MCP.Path, "/") {
		errs = append(errs, fmt.Errorf("mcp.path must start with \"/\", got %q", c.MCP.Path))
	}

	// observability.metrics.path must be rooted when metrics are enabled.
	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
