// Package config layers docsift configuration: built-in defaults, then
// an optional docsift.toml in the project root, then DOCSIFT_* environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all docsift configuration.
type Config struct {
	Filter  FilterConfig  `toml:"filter"`
	Output  OutputConfig  `toml:"output"`
	State   StateConfig   `toml:"state"`
	Webhook WebhookConfig `toml:"webhook"`
	Logging LoggingConfig `toml:"logging"`
}

// FilterConfig holds parsing settings.
type FilterConfig struct {
	Tool       string        `toml:"tool"` // "", "mkdocs", "sphinx"
	ErrorsOnly bool          `toml:"errors_only"`
	IdleFlush  Duration      `toml:"idle_flush"`
}

// OutputConfig holds rendering settings.
type OutputConfig struct {
	Format  string `toml:"format"` // "term" or "jsonl"
	Verbose bool   `toml:"verbose"`
	NoColor bool   `toml:"no_color"`
}

// StateConfig controls the shared state file.
type StateConfig struct {
	Share bool   `toml:"share"`
	Dir   string `toml:"dir"` // empty: system temp dir
}

// WebhookConfig controls cycle delivery to an HTTP endpoint.
type WebhookConfig struct {
	URL string `toml:"url"`
}

// LoggingConfig holds diagnostic logging settings for docsift itself.
type LoggingConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Filter:  FilterConfig{IdleFlush: Duration(2 * time.Second)},
		Output:  OutputConfig{Format: "term"},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load builds the effective configuration for a project rooted at dir.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, "docsift.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays DOCSIFT_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCSIFT_TOOL"); v != "" {
		cfg.Filter.Tool = v
	}
	if v, ok := getenvBool("DOCSIFT_ERRORS_ONLY"); ok {
		cfg.Filter.ErrorsOnly = v
	}
	if v := os.Getenv("DOCSIFT_IDLE_FLUSH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Filter.IdleFlush = Duration(d)
		}
	}
	if v := os.Getenv("DOCSIFT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v, ok := getenvBool("DOCSIFT_VERBOSE"); ok {
		cfg.Output.Verbose = v
	}
	if v, ok := getenvBool("DOCSIFT_NO_COLOR"); ok {
		cfg.Output.NoColor = v
	}
	// NO_COLOR is the cross-tool convention; any value disables color.
	if os.Getenv("NO_COLOR") != "" {
		cfg.Output.NoColor = true
	}
	if v, ok := getenvBool("DOCSIFT_SHARE_STATE"); ok {
		cfg.State.Share = v
	}
	if v := os.Getenv("DOCSIFT_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("DOCSIFT_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("DOCSIFT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func getenvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
