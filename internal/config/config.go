// Package config loads the eurotab command configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned when an environment value cannot be used.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Environment variable names.
const (
	EnvLogLevel    = "EUROTAB_LOG_LEVEL"
	EnvSeqURL      = "EUROTAB_SEQ_URL"
	EnvSourcesFile = "EUROTAB_SOURCES_FILE"
	EnvSource      = "EUROTAB_SOURCE"
	EnvWorkers     = "EUROTAB_WORKERS"
)

// Config is the command configuration. Command line flags override it.
type Config struct {
	// LogLevel is the minimum console and Seq level
	LogLevel slog.Level
	// SeqURL enables the Seq sink when not empty
	SeqURL string
	// SourcesFile is a YAML file with extra source definitions
	SourcesFile string
	// Source is the default source name
	Source string
	// Workers is the normalization parallelism, 0 for the library default
	Workers int
}

// Load reads envFiles (".env" when none is given) into the environment and
// builds a Config. A missing default ".env" is not an error; variables that
// are already set are never overridden.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := &Config{
		SeqURL:      getEnvOrDefault(EnvSeqURL, ""),
		SourcesFile: getEnvOrDefault(EnvSourcesFile, ""),
		Source:      getEnvOrDefault(EnvSource, "eurostat-master"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvOrDefault(EnvLogLevel, "INFO"))); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvLogLevel, err)
	}

	workers, err := getEnvIntOrDefault(EnvWorkers, 0)
	if err != nil {
		return nil, err
	}
	if workers < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, EnvWorkers)
	}
	cfg.Workers = workers
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, value)
	}
	return n, nil
}
