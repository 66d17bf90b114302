package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 4, cfg.Validation.Concurrency)
	require.Equal(t, OutputJSON, cfg.Validation.Output)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.NotEmpty(t, cfg.Tracing.FilePath)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.False(t, cfg.History.Enabled)
	require.NotEmpty(t, cfg.History.Path)
	require.NotNil(t, cfg.Flags)
	require.NoError(t, Validate(cfg))
}

func TestValidate_Validation(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.Concurrency = 0
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation.concurrency must be at least 1")

	cfg = Defaults()
	cfg.Validation.Output = "xml"
	err = Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation.output")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "log.level")
}

func TestValidate_History(t *testing.T) {
	cfg := Defaults()
	cfg.History.Enabled = true
	cfg.History.Path = ""

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "history.path is required")
}

func TestValidate_UserFiles(t *testing.T) {
	cfg := Defaults()
	cfg.Schemas.UserFiles = []string{"a.yaml", ""}

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "schemas.user_files[1]")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tracing TracingConfig
		wantErr string
	}{
		{name: "defaults", tracing: Defaults().Tracing},
		{name: "empty exporter", tracing: TracingConfig{SampleRate: 0.5}},
		{
			name:    "sample rate too high",
			tracing: TracingConfig{Exporter: "stdout", SampleRate: 1.5},
			wantErr: "tracing.sample_rate must be between 0.0 and 1.0",
		},
		{
			name:    "negative sample rate",
			tracing: TracingConfig{Exporter: "stdout", SampleRate: -0.1},
			wantErr: "tracing.sample_rate must be between 0.0 and 1.0",
		},
		{
			name:    "unknown exporter",
			tracing: TracingConfig{Exporter: "jaeger", SampleRate: 1},
			wantErr: "tracing.exporter must be",
		},
		{
			name:    "file without path",
			tracing: TracingConfig{Enabled: true, Exporter: "file", SampleRate: 1},
			wantErr: "tracing.file_path is required",
		},
		{
			name:    "otlp without endpoint",
			tracing: TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1},
			wantErr: "tracing.otlp_endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tracing)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigTemplate_IsValidYAML(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	for _, section := range []string{"schemas", "validation", "log", "cache", "history", "tracing", "watch", "flags"} {
		require.Contains(t, parsed, section)
	}

	validation, ok := parsed["validation"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 4, validation["concurrency"])
	require.Equal(t, "json", validation["output"])
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
