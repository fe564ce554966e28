package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvOutputDir, EnvDotBinary, EnvViewer, EnvStyleFile, EnvLogLevel, EnvLogAppName,
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, os.TempDir(), cfg.OutputDir)
	assert.Equal(t, DefaultDotBinary, cfg.DotBinary)
	assert.Empty(t, cfg.ViewerCommand)
	assert.Nil(t, cfg.StyleOverrides)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogAppName, cfg.LogAppName)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOutputDir, "/var/tmp/sketches")
	t.Setenv(EnvDotBinary, "/opt/graphviz/bin/dot")
	t.Setenv(EnvViewer, "evince")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogAppName, "sketch-dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/tmp/sketches", cfg.OutputDir)
	assert.Equal(t, "/opt/graphviz/bin/dot", cfg.DotBinary)
	assert.Equal(t, "evince", cfg.ViewerCommand)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sketch-dev", cfg.LogAppName)
}

func TestLoad_StyleFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "styles.yaml")
	content := `
tag:
  color: salmon
reference:
  style: dotted
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv(EnvStyleFile, path)

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.StyleOverrides)
	assert.Equal(t, "salmon", cfg.StyleOverrides["tag"]["color"])
	assert.Equal(t, "dotted", cfg.StyleOverrides["reference"]["style"])
}

func TestLoad_StyleFileNotFound(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvStyleFile, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStyleFileNotFound)
}

func TestLoad_StyleFileInvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tag: [not, a, map]"), 0o644))
	t.Setenv(EnvStyleFile, path)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStyleFileInvalid)
}
