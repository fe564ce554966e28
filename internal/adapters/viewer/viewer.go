// Package viewer provides the best-effort viewer refresh for rendered
// artifacts. The viewer is fully isolated from graph construction: it is
// invoked once the artifact exists, and its failures never roll back or
// invalidate the graph.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// Logger defines the logging interface for the viewer adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// ErrNoViewerCommand indicates no viewer command is configured for this
// platform and none was supplied.
var ErrNoViewerCommand = errors.New("no viewer command configured")

// DefaultCommand returns the platform opener, or empty when the platform
// has no obvious one.
func DefaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	default:
		return ""
	}
}

// CommandViewer implements domain.Viewer by launching an external opener
// with the artifact path as its single argument.
type CommandViewer struct {
	command string
	logger  Logger
}

// NewCommandViewer creates a CommandViewer. An empty command falls back to
// the platform default; Show fails with ErrNoViewerCommand when neither
// exists.
func NewCommandViewer(command string, log Logger) *CommandViewer {
	if command == "" {
		command = DefaultCommand()
	}
	return &CommandViewer{command: command, logger: log}
}

// Show launches the viewer on the given path without waiting for it to
// exit. Fire-and-forget: the process is reaped in the background and its
// exit status is not reported.
func (v *CommandViewer) Show(ctx context.Context, path string) error {
	if v.command == "" {
		return ErrNoViewerCommand
	}

	cmd := exec.CommandContext(ctx, v.command, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start viewer %s: %w", v.command, err)
	}

	v.logger.Debug(ctx, "viewer launched", map[string]interface{}{
		"command": v.command,
		"path":    path,
		"pid":     cmd.Process.Pid,
	})

	go func() {
		// Reap the child so it does not linger as a zombie.
		_ = cmd.Wait()
	}()

	return nil
}
