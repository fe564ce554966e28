// Package cmd provides the CLI commands for gitsketch.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance.
	LoggerFactory func() Logger

	// ConfigLoader loads application configuration.
	ConfigLoader func() (*AppConfig, error)

	// ProviderFactory creates a RepositoryProvider for the given path.
	ProviderFactory func(path string, log Logger) (domain.RepositoryProvider, error)

	// RendererFactory creates a Renderer using the given config.
	RendererFactory func(cfg *AppConfig, log Logger) domain.Renderer

	// ViewerFactory creates a Viewer using the given config.
	ViewerFactory func(cfg *AppConfig, log Logger) domain.Viewer

	// SketcherFactory creates a Sketcher with the given collaborators.
	SketcherFactory func(
		provider domain.RepositoryProvider,
		renderer domain.Renderer,
		viewer domain.Viewer,
		log Logger,
	) domain.Sketcher

	// Stdout is the writer for standard output (artifact path).
	Stdout io.Writer

	// Stderr is the writer for standard error (warnings/errors).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// OutputDir receives the rendered artifacts.
	OutputDir string

	// DotBinary is the graphviz layout command.
	DotBinary string

	// ViewerCommand opens the rendered PDF.
	ViewerCommand string

	// StyleOverrides replaces individual style attributes per kind.
	StyleOverrides map[string]map[string]string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// Command-line flags.
var (
	outputDir string
	noView    bool
	verbose   bool
)

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for gitsketch.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitsketch [path]",
		Short: "Render a teaching-style graph of a Git repository",
		Long: `gitsketch draws the commit history of a local Git repository as a
graphviz diagram: commits with friendly names and abbreviated hashes,
branch pointers (local and remote-tracking), tags, HEAD (attached or
detached), and the staged working index.

The graph is written as DOT, rendered to PDF with the external dot
binary, and opened in the configured viewer.

Examples:
  # Sketch the repository in the current directory
  gitsketch

  # Sketch a specific repository
  gitsketch /path/to/repo

  # Write artifacts somewhere specific and skip the viewer
  gitsketch -o ./out --no-view

  # Enable verbose logging
  gitsketch -v`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSketch(cmd, args, deps)
		},
	}

	// Define flags
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Directory for the DOT and PDF artifacts (default: system temp dir)")
	rootCmd.Flags().BoolVar(&noView, "no-view", false,
		"Skip launching the viewer after rendering")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	return rootCmd
}

// runSketch executes the sketch logic with injected dependencies.
func runSketch(cmd *cobra.Command, args []string, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Determine repository path
	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}

	stdout := deps.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// Set log level based on verbose flag (best-effort)
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			writeWarningf(stderr, "warning: could not set log level: %v\n", err)
		}
	}

	log := deps.LoggerFactory()

	log.Info(ctx, "starting gitsketch", map[string]interface{}{
		"path":    repoPath,
		"verbose": verbose,
	})

	cfg, err := deps.ConfigLoader()
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return fmt.Errorf("configuration error: %w", err)
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	provider, err := deps.ProviderFactory(repoPath, log)
	if err != nil {
		log.Error(ctx, "failed to open git repository", err, map[string]interface{}{
			"path": repoPath,
		})
		if errors.Is(err, domain.ErrRepositoryNotFound) {
			return fmt.Errorf("not a git repository: %s", repoPath)
		}
		return err
	}
	defer func() {
		if closeErr := provider.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close git repository", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	renderer := deps.RendererFactory(cfg, log)

	var view domain.Viewer
	if !noView {
		view = deps.ViewerFactory(cfg, log)
	}

	sketcher := deps.SketcherFactory(provider, renderer, view, log)
	result, err := sketcher.Sketch(ctx)
	if err != nil {
		log.Error(ctx, "failed to sketch repository", err, nil)
		return err
	}

	// Rendering and viewing are best-effort: report, don't fail.
	if result.RenderErr != nil {
		writeWarningf(stderr, "warning: %v\n", result.RenderErr)
	}
	if result.ViewErr != nil {
		writeWarningf(stderr, "warning: %v\n", result.ViewErr)
	}

	if path := artifactPath(result); path != "" {
		if _, err := fmt.Fprintln(stdout, path); err != nil {
			log.Error(ctx, "failed to write output", err, nil)
			return fmt.Errorf("output error: %w", err)
		}
	}

	log.Info(ctx, "sketch complete", map[string]interface{}{
		"commits": result.CommitCount,
		"nodes":   result.NodeCount,
		"edges":   result.EdgeCount,
		"pdf":     result.Artifact.PDFPath,
	})

	return nil
}

// artifactPath picks the most useful artifact to report: the PDF when the
// render succeeded, the raw DOT file otherwise.
func artifactPath(result *domain.SketchOutput) string {
	if result.Artifact.PDFPath != "" {
		return result.Artifact.PDFPath
	}
	return result.Artifact.DotPath
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
