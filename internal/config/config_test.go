package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != "term" {
		t.Errorf("format = %q", cfg.Output.Format)
	}
	if cfg.Filter.IdleFlush.Std() != 2*time.Second {
		t.Errorf("idle flush = %v", cfg.Filter.IdleFlush.Std())
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestTOMLFile(t *testing.T) {
	dir := t.TempDir()
	doc := `
[filter]
tool = "sphinx"
errors_only = true
idle_flush = "500ms"

[output]
format = "jsonl"

[webhook]
url = "https://hooks.example.com/docs"
`
	if err := os.WriteFile(filepath.Join(dir, "docsift.toml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filter.Tool != "sphinx" || !cfg.Filter.ErrorsOnly {
		t.Errorf("filter = %+v", cfg.Filter)
	}
	if cfg.Filter.IdleFlush.Std() != 500*time.Millisecond {
		t.Errorf("idle flush = %v", cfg.Filter.IdleFlush.Std())
	}
	if cfg.Output.Format != "jsonl" {
		t.Errorf("format = %q", cfg.Output.Format)
	}
	if cfg.Webhook.URL != "https://hooks.example.com/docs" {
		t.Errorf("webhook url = %q", cfg.Webhook.URL)
	}
}

func TestEnvOverridesTOML(t *testing.T) {
	dir := t.TempDir()
	doc := "[filter]\ntool = \"sphinx\"\n"
	if err := os.WriteFile(filepath.Join(dir, "docsift.toml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCSIFT_TOOL", "mkdocs")
	t.Setenv("DOCSIFT_ERRORS_ONLY", "true")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filter.Tool != "mkdocs" {
		t.Errorf("tool = %q, want env override", cfg.Filter.Tool)
	}
	if !cfg.Filter.ErrorsOnly {
		t.Error("errors_only env not applied")
	}
}

func TestNoColorConvention(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Output.NoColor {
		t.Error("NO_COLOR not honored")
	}
}

func TestBadTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "docsift.toml"), []byte("filter = {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}
