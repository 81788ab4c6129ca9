package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dl-alexandre/dsync/internal/types"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad output format", func(c *Config) { c.DefaultOutputFormat = "yaml" }},
		{"bad mode", func(c *Config) { c.DefaultMode = "newest-wins" }},
		{"zero concurrency", func(c *Config) { c.DefaultConcurrency = 0 }},
		{"huge concurrency", func(c *Config) { c.DefaultConcurrency = 1000 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"tiny retry delay", func(c *Config) { c.RetryBaseDelay = 10 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPrefix+"CONFIG_DIR", dir)

	fileContent := `{
		"defaultProfile": "work",
		"defaultOutputFormat": "table",
		"defaultMode": "size-and-time",
		"defaultConcurrency": 10,
		"maxRetries": 5,
		"retryBaseDelay": 2000,
		"requestTimeout": 120,
		"logLevel": "verbose",
		"colorOutput": false
	}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(fileContent), 0600); err != nil {
		t.Fatal(err)
	}

	// Env vars win over the file.
	t.Setenv(EnvPrefix+"CONCURRENCY", "3")
	t.Setenv(EnvPrefix+"DEFAULT_MODE", "force")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultProfile != "work" {
		t.Errorf("profile = %q, want work (from file)", cfg.DefaultProfile)
	}
	if cfg.DefaultOutputFormat != types.OutputFormatTable {
		t.Errorf("format = %q, want table (from file)", cfg.DefaultOutputFormat)
	}
	if cfg.DefaultConcurrency != 3 {
		t.Errorf("concurrency = %d, want 3 (from env)", cfg.DefaultConcurrency)
	}
	if cfg.DefaultMode != "force" {
		t.Errorf("mode = %q, want force (from env)", cfg.DefaultMode)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultConcurrency != DefaultConfig().DefaultConcurrency {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.DefaultProfile = "personal"
	cfg.ExportFormats = map[string]string{"document": "pdf"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DefaultProfile != "personal" {
		t.Errorf("profile = %q, want personal", loaded.DefaultProfile)
	}
	if loaded.ExportFormats["document"] != "pdf" {
		t.Errorf("export formats = %v", loaded.ExportFormats)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Save(); err == nil {
		t.Error("expected validation error on save")
	}
}
