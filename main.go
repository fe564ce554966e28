// Package main is the entry point for the gitsketch CLI application.
// gitsketch renders a teaching-style graphviz diagram of a local Git
// repository's commits, branches, tags, HEAD, and staged index, and opens
// the result in a viewer.
package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/gitsketch/gitsketch/cmd"
	"github.com/gitsketch/gitsketch/internal/adapters/git"
	logadapter "github.com/gitsketch/gitsketch/internal/adapters/logger"
	"github.com/gitsketch/gitsketch/internal/adapters/render"
	"github.com/gitsketch/gitsketch/internal/adapters/viewer"
	"github.com/gitsketch/gitsketch/internal/domain"
	"github.com/gitsketch/gitsketch/internal/infrastructure/config"
	"github.com/gitsketch/gitsketch/internal/usecases"
)

func main() {
	// Wire up production dependencies
	deps := &cmd.Dependencies{
		LoggerFactory: func() cmd.Logger {
			level := os.Getenv(config.EnvLogLevel)
			if level == "" {
				level = config.DefaultLogLevel
			}
			appName := os.Getenv(config.EnvLogAppName)
			if appName == "" {
				appName = config.DefaultLogAppName
			}

			zapLog, err := logadapter.New(level, appName)
			if err != nil {
				// Logging must never take the tool down; fall back to a
				// no-op core.
				return logadapter.NewZapAdapter(noopZap())
			}
			return logadapter.NewZapAdapter(zapLog)
		},

		ConfigLoader: func() (*cmd.AppConfig, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				OutputDir:      cfg.OutputDir,
				DotBinary:      cfg.DotBinary,
				ViewerCommand:  cfg.ViewerCommand,
				StyleOverrides: cfg.StyleOverrides,
				LogLevel:       cfg.LogLevel,
				LogAppName:     cfg.LogAppName,
			}, nil
		},

		ProviderFactory: func(path string, log cmd.Logger) (domain.RepositoryProvider, error) {
			return git.NewGoGitProvider(path, log)
		},

		RendererFactory: func(cfg *cmd.AppConfig, log cmd.Logger) domain.Renderer {
			return render.NewDotRenderer(render.Options{
				OutputDir:      cfg.OutputDir,
				DotBinary:      cfg.DotBinary,
				StyleOverrides: cfg.StyleOverrides,
			}, log)
		},

		ViewerFactory: func(cfg *cmd.AppConfig, log cmd.Logger) domain.Viewer {
			return viewer.NewCommandViewer(cfg.ViewerCommand, log)
		},

		SketcherFactory: func(
			provider domain.RepositoryProvider,
			renderer domain.Renderer,
			view domain.Viewer,
			log cmd.Logger,
		) domain.Sketcher {
			return usecases.NewGraphSketcher(provider, renderer, view, log)
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}

// noopZap is the fallback when the real logger cannot be built.
func noopZap() *zap.Logger {
	return zap.NewNop()
}
