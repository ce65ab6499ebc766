package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{EnvLogLevel, EnvSeqURL, EnvSourcesFile, EnvSource, EnvWorkers}

// unsetAll removes every eurotab variable for the duration of the test.
func unsetAll(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetAll(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.SeqURL)
	assert.Empty(t, cfg.SourcesFile)
	assert.Equal(t, "eurostat-master", cfg.Source)
	assert.Equal(t, 0, cfg.Workers)
}

func TestLoadFromEnvironment(t *testing.T) {
	unsetAll(t)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvSeqURL, "http://localhost:5341")
	t.Setenv(EnvSourcesFile, "sources.yaml")
	t.Setenv(EnvSource, "eurostat-master-offsets")
	t.Setenv(EnvWorkers, "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://localhost:5341", cfg.SeqURL)
	assert.Equal(t, "sources.yaml", cfg.SourcesFile)
	assert.Equal(t, "eurostat-master-offsets", cfg.Source)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadEnvFile(t *testing.T) {
	unsetAll(t)
	t.Setenv(EnvSource, "from-environment")

	path := filepath.Join(t.TempDir(), "eurotab.env")
	content := "EUROTAB_WORKERS=3\nEUROTAB_LOG_LEVEL=WARN\nEUROTAB_SOURCE=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "from-environment", cfg.Source, "set variables win over the file")

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown level", key: EnvLogLevel, value: "loud"},
		{name: "workers not a number", key: EnvWorkers, value: "many"},
		{name: "negative workers", key: EnvWorkers, value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetAll(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
