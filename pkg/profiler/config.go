package profiler

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by ConfigFromEnv.
const (
	EnvEnabled  = "PROFILEDB_ENABLED"
	EnvSavePath = "PROFILEDB_SAVE_PATH"
	EnvLogLevel = "PROFILEDB_LOG_LEVEL"
	EnvPretty   = "PROFILEDB_PRETTY"
)

// Config controls whether and how a host enables the profiler. Hosts
// typically load it once at startup and, when Enabled, create a Database
// and register SavePath for the at-exit save.
type Config struct {
	// Enabled turns profiling on for this process.
	Enabled bool `yaml:"enabled"`
	// SavePath is the at-exit save target. Setting it implies Enabled
	// when loading from the environment.
	SavePath string `yaml:"save_path"`
	// LogLevel sets the profiler's log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Pretty enables human-readable console log output.
	Pretty bool `yaml:"pretty"`
}

// DefaultConfig returns the configuration used when nothing is set:
// profiling off, info-level structured logs.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		LogLevel: "info",
		Pretty:   false,
	}
}

// LoadConfig reads a YAML config file, layered over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 - config path is chosen by the embedding host.
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read profiler config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse profiler config: %w", err)
	}
	return cfg, nil
}

// ConfigFromEnv layers environment variables over cfg. A non-empty
// PROFILEDB_SAVE_PATH implies Enabled, so hosts can switch profiling on
// with a single variable.
func ConfigFromEnv(cfg Config) Config {
	if v := os.Getenv(EnvEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvSavePath); v != "" {
		cfg.SavePath = v
		cfg.Enabled = true
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPretty); v != "" {
		if pretty, err := strconv.ParseBool(v); err == nil {
			cfg.Pretty = pretty
		}
	}
	return cfg
}
