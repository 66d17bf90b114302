package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/benchschema/internal/config"
	"github.com/zjrosen/benchschema/internal/log"
)

// LocalConfigPath is the project-local config file, checked before the user config.
const LocalConfigPath = ".benchschema/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	configErr  error
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "benchschema",
	Short: "Versioned schema registry and validator for benchmark reports",
	Long: `benchschema validates benchmark report records against versioned schemas.

Each report kind (applications-benchmarks, datasheet, crates-io-validation, or
a kind declared in a user schema file) has its own set of versions. Records are
checked field by field; every missing field, type mismatch and invalid enum value
is reported, and undeclared fields are ignored.

Identifiers address a schema as registry::version, for example
applications-benchmarks::release-0.21. Registries with a single schema can be
named without a version (datasheet).`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .benchschema/config.yaml, then ~/.config/benchschema/config.yaml)")
}

func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("schemas.user_files", []string{})
	v.SetDefault("validation.concurrency", defaults.Validation.Concurrency)
	v.SetDefault("validation.output", defaults.Validation.Output)
	v.SetDefault("log.enabled", defaults.Log.Enabled)
	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("flags", map[string]bool{})
}

func initConfig() {
	viper.Reset()
	setDefaults(viper.GetViper())
	configErr = nil

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .benchschema/config.yaml (current directory)
		// 2. ~/.config/benchschema/config.yaml (user config)
		if _, err := os.Stat(LocalConfigPath); err == nil {
			viper.SetConfigFile(LocalConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "benchschema"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config anywhere is fine: defaults apply. config:init writes one.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = fmt.Errorf("decoding config: %w", err)
	}
}

// setup validates the loaded config and starts logging before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Log.Enabled {
		if cfg.Log.Path != "" {
			cleanup, err := log.Init(cfg.Log.Path)
			if err != nil {
				return err
			}
			logCleanup = cleanup
		} else {
			log.InitWriter(os.Stderr)
		}
		level, _ := log.ParseLevel(cfg.Log.Level)
		log.SetMinLevel(level)
	}

	log.Debug(log.CatConfig, "Configuration loaded", "file", viper.ConfigFileUsed())
	return nil
}

// configFilePath returns the config file in use, or where a new one should go.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if cfgFile != "" {
		return cfgFile
	}
	return LocalConfigPath
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	}()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
