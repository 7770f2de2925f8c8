package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Datura.BaseURL != "https://apis.datura.ai" {
		t.Errorf("default datura.base_url = %q, want \"https://apis.datura.ai\"", cfg.Datura.BaseURL)
	}
	if cfg.Datura.Timeout != 120*time.Second {
		t.Errorf("default datura.timeout = %v, want 120s", cfg.Datura.Timeout)
	}
	if cfg.MCP.Port != 8080 {
		t.Errorf("default mcp.port = %d, want 8080", cfg.MCP.Port)
	}
	if cfg.MCP.Path != "/mcp" {
		t.Errorf("default mcp.path = %q, want \"/mcp\"", cfg.MCP.Path)
	}
	if !cfg.Observability.Metrics.Enabled {
		t.Error("default observability.metrics.enabled = false, want true")
	}
	if cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("default observability.metrics.path = %q, want \"/metrics\"", cfg.Observability.Metrics.Path)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
datura:
  api_key: dt-test-key
  base_url: http://localhost:9090
  timeout: 30s
mcp:
  port: 9191
  path: /tools
observability:
  metrics:
    enabled: false
`

	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Datura.APIKey != "dt-test-key" {
		t.Errorf("datura.api_key = %q, want \"dt-test-key\"", cfg.Datura.APIKey)
	}
	if cfg.Datura.BaseURL != "http://localhost:9090" {
		t.Errorf("datura.base_url = %q, want \"http://localhost:9090\"", cfg.Datura.BaseURL)
	}
	if cfg.Datura.Timeout != 30*time.Second {
		t.Errorf("datura.timeout = %v, want 30s", cfg.Datura.Timeout)
	}
	if cfg.MCP.Port != 9191 {
		t.Errorf("mcp.port = %d, want 9191", cfg.MCP.Port)
	}
	if cfg.MCP.Path != "/tools" {
		t.Errorf("mcp.path = %q, want \"/tools\"", cfg.MCP.Path)
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("observability.metrics.enabled = true, want false")
	}
}

func TestEnvOverride(t *testing.T) {
	yamlContent := `
datura:
  api_key: from-yaml
  base_url: http://from-yaml:9090
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	t.Setenv("DATURA_API_KEY", "from-env")
	t.Setenv("DATURA_BASE_URL", "http://from-env:8081")
	t.Setenv("DATURA_TIMEOUT", "45s")
	t.Setenv("DATURA_MCP_PORT", "7070")
	t.Setenv("DATURA_METRICS_ENABLED", "false")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Datura.APIKey != "from-env" {
		t.Errorf("datura.api_key = %q, want env override", cfg.Datura.APIKey)
	}
	if cfg.Datura.BaseURL != "http://from-env:8081" {
		t.Errorf("datura.base_url = %q, want env override", cfg.Datura.BaseURL)
	}
	if cfg.Datura.Timeout != 45*time.Second {
		t.Errorf("datura.timeout = %v, want 45s", cfg.Datura.Timeout)
	}
	if cfg.MCP.Port != 7070 {
		t.Errorf("mcp.port = %d, want 7070", cfg.MCP.Port)
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("observability.metrics.enabled = true, want env override false")
	}
}

func TestFileReference(t *testing.T) {
	keyFile := writeTemp(t, "apikey-*.txt", "dt-secret-from-file\n")

	yamlContent := `
datura:
  api_key_file: ` + keyFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Datura.APIKey != "dt-secret-from-file" {
		t.Errorf("datura.api_key = %q, want trimmed file content", cfg.Datura.APIKey)
	}
}

func TestFileReferenceDoesNotOverrideExplicitValue(t *testing.T) {
	keyFile := writeTemp(t, "apikey-*.txt", "from-file")

	yamlContent := `
datura:
  api_key: explicit-key
  api_key_file: ` + keyFile + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Datura.APIKey != "explicit-key" {
		t.Errorf("datura.api_key = %q, explicit value should win", cfg.Datura.APIKey)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	yamlContent := `
datura:
  api_key_file: /nonexistent/apikey.txt
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	if _, err := Load(tmpFile); err == nil {
		t.Fatal("expected error for missing api_key_file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"missing api key",
			func(c *Config) { c.Datura.APIKey = "" },
			"datura.api_key is required",
		},
		{
			"bad base url",
			func(c *Config) { c.Datura.BaseURL = "apis.datura.ai" },
			"datura.base_url",
		},
		{
			"negative timeout",
			func(c *Config) { c.Datura.Timeout = -time.Second },
			"datura.timeout",
		},
		{
			"bad mcp port",
			func(c *Config) { c.MCP.Port = 0 },
			"mcp.port",
		},
		{
			"unrooted mcp path",
			func(c *Config) { c.MCP.Path = "mcp" },
			"mcp.path",
		},
		{
			"unrooted metrics path",
			func(c *Config) { c.Observability.Metrics.Path = "metrics" },
			"observability.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Datura.APIKey = "dt-key"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestYAMLDefaultsMerge(t *testing.T) {
	// A partial YAML keeps defaults for unmentioned fields.
	yamlContent := `
datura:
  api_key: dt-key
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Datura.BaseURL != "https://apis.datura.ai" {
		t.Errorf("datura.base_url = %q, want default preserved", cfg.Datura.BaseURL)
	}
	if cfg.MCP.Port != 8080 {
		t.Errorf("mcp.port = %d, want default preserved", cfg.MCP.Port)
	}
}

func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	dir := t.TempDir()

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	path := f.Name()

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		t.Fatalf("writing temp file: %v", err)
	}
	f.Close()

	return path
}
