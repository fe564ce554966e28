// Package config provides configuration loading for the gitsketch
// application. All settings come from environment variables with sensible
// defaults; the optional style file lets users restyle node and edge kinds
// without touching code.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	// EnvOutputDir is the directory receiving the DOT and PDF artifacts.
	EnvOutputDir = "GITSKETCH_OUTPUT_DIR"

	// EnvDotBinary is the graphviz layout command.
	EnvDotBinary = "GITSKETCH_DOT_BINARY"

	// EnvViewer is the viewer command; empty selects the platform opener.
	EnvViewer = "GITSKETCH_VIEWER"

	// EnvStyleFile is the path to a YAML style-override file.
	EnvStyleFile = "GITSKETCH_STYLE_FILE"

	// EnvLogLevel is the log level (debug, info, warn, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"
)

// Default values.
const (
	DefaultDotBinary  = "dot"
	DefaultLogLevel   = "info"
	DefaultLogAppName = "gitsketch"
)

// Configuration errors.
var (
	// ErrStyleFileNotFound indicates the configured style file does not exist.
	ErrStyleFileNotFound = errors.New("style file not found")

	// ErrStyleFileInvalid indicates the style file is not valid YAML of the
	// expected shape.
	ErrStyleFileInvalid = errors.New("style file is not valid")
)

// Config holds all application configuration.
type Config struct {
	// OutputDir receives the rendered artifacts. Defaults to the system
	// temporary directory.
	OutputDir string

	// DotBinary is the graphviz layout command.
	DotBinary string

	// ViewerCommand opens the rendered PDF; empty selects the platform
	// opener.
	ViewerCommand string

	// StyleOverrides replaces individual style attributes per node or edge
	// kind. Nil when no style file is configured.
	StyleOverrides map[string]map[string]string

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// Load loads the application configuration from environment variables.
// A configured but unreadable style file is an error: explicit
// configuration should fail loudly rather than fall back silently.
func Load() (*Config, error) {
	cfg := &Config{
		OutputDir:     getenvDefault(EnvOutputDir, os.TempDir()),
		DotBinary:     getenvDefault(EnvDotBinary, DefaultDotBinary),
		ViewerCommand: os.Getenv(EnvViewer),
		LogLevel:      getenvDefault(EnvLogLevel, DefaultLogLevel),
		LogAppName:    getenvDefault(EnvLogAppName, DefaultLogAppName),
	}

	if path := os.Getenv(EnvStyleFile); path != "" {
		overrides, err := loadStyleFile(path)
		if err != nil {
			return nil, err
		}
		cfg.StyleOverrides = overrides
	}

	return cfg, nil
}

// loadStyleFile reads a YAML mapping of kind keys (e.g. "tag",
// "local-branch", "reference") to graphviz attribute maps.
func loadStyleFile(path string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStyleFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read style file %s: %w", path, err)
	}

	var overrides map[string]map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStyleFileInvalid, path, err)
	}

	return overrides, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
