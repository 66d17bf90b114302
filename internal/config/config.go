// Package config provides configuration types and defaults for benchschema.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/benchschema/internal/log"
)

// Config holds all configuration options for benchschema.
type Config struct {
	Schemas    SchemasConfig    `mapstructure:"schemas"`
	Validation ValidationConfig `mapstructure:"validation"`
	Log        LogConfig        `mapstructure:"log"`
	Cache      CacheConfig      `mapstructure:"cache"`
	History    HistoryConfig    `mapstructure:"history"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// SchemasConfig points at user schema declarations loaded next to the built-ins.
type SchemasConfig struct {
	UserFiles []string `mapstructure:"user_files"` // YAML declaration files
}

// ValidationConfig holds batch validation options.
type ValidationConfig struct {
	Concurrency int    `mapstructure:"concurrency"` // worker count for batch validation
	Output      string `mapstructure:"output"`      // "json" (default) or "text"
}

// LogConfig holds logging options.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`  // empty logs to stderr
	Level   string `mapstructure:"level"` // debug, info, warn, error
}

// CacheConfig holds cache options.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // lifetime of compiled JSON Schemas
}

// HistoryConfig holds run history options.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // sqlite database file
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the JSONL output file for the "file" exporter.
	// Default: ~/.config/benchschema/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// WatchConfig holds watch mode options.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Output formats
const (
	OutputJSON = "json"
	OutputText = "text"
)

// DefaultHistoryPath returns the default run history database path.
// Returns ~/.config/benchschema/history.db, or a relative path if the home directory is unavailable.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".benchschema", "history.db")
	}
	return filepath.Join(home, ".config", "benchschema", "history.db")
}

// DefaultTracesPath returns the default trace file path for the "file" exporter.
func DefaultTracesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".benchschema", "traces", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "benchschema", "traces", "traces.jsonl")
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Validation: ValidationConfig{
			Concurrency: 4,
			Output:      OutputJSON,
		},
		Log: LogConfig{
			Enabled: false,
			Level:   "info",
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    DefaultHistoryPath(),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesPath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Flags: map[string]bool{},
	}
}

// Validate checks the configuration for invalid values.
func Validate(cfg Config) error {
	if err := ValidateValidation(cfg.Validation); err != nil {
		return err
	}
	if err := ValidateLog(cfg.Log); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", cfg.Cache.TTL)
	}
	for i, f := range cfg.Schemas.UserFiles {
		if f == "" {
			return fmt.Errorf("schemas.user_files[%d]: path is empty", i)
		}
	}
	return nil
}

// ValidateValidation checks batch validation options.
func ValidateValidation(v ValidationConfig) error {
	if v.Concurrency < 1 {
		return fmt.Errorf("validation.concurrency must be at least 1, got %d", v.Concurrency)
	}
	switch v.Output {
	case OutputJSON, OutputText, "":
		// Valid
	default:
		return fmt.Errorf("validation.output must be %q or %q, got %q", OutputJSON, OutputText, v.Output)
	}
	return nil
}

// ValidateLog checks logging options.
func ValidateLog(l LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateTracing checks tracing options.
func ValidateTracing(tracing TracingConfig) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled && tracing.Exporter == "file" && tracing.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// DefaultConfigTemplate returns the commented default config file.
func DefaultConfigTemplate() string {
	return `# benchschema configuration

# Extra schema declarations registered next to the built-in ones
schemas:
  user_files: []
  # user_files:
  #   - ./schemas/gpu-benchmarks.yaml

validation:
  concurrency: 4   # workers used to validate a batch of records
  output: json     # "json" or "text"

log:
  enabled: false
  # path: ./benchschema.log   # empty logs to stderr
  level: info

cache:
  ttl: 10m   # lifetime of compiled JSON Schemas

# Record every validation run in a local sqlite database
history:
  enabled: false
  # path: ~/.config/benchschema/history.db

tracing:
  enabled: false
  exporter: file   # "none", "file", "stdout" or "otlp"
  # file_path: ~/.config/benchschema/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

watch:
  debounce: 500ms

# Feature flags
flags:
  warn-undeclared-fields: false   # log undeclared fields dropped from records
  jsonschema-crosscheck: false    # re-check records against the exported JSON Schema
`
}

// WriteDefaultConfig creates a config file with default settings at the given path.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
