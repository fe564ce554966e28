// Package cmd provides the CLI commands for gitsketch.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// Test mocks for dependency injection testing.

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockProvider implements domain.RepositoryProvider for testing.
type mockProvider struct {
	closeCalled bool
}

func (m *mockProvider) Head(_ context.Context) (*domain.HeadState, error) {
	return &domain.HeadState{Unborn: true}, nil
}

func (m *mockProvider) LocalBranches(_ context.Context) ([]domain.RefTarget, error) {
	return nil, nil
}

func (m *mockProvider) RemoteBranches(_ context.Context) ([]domain.RefTarget, error) {
	return nil, nil
}

func (m *mockProvider) Tags(_ context.Context) ([]domain.RefTarget, error) { return nil, nil }

func (m *mockProvider) Commit(_ context.Context, _ domain.CommitID) (*domain.CommitRecord, error) {
	return nil, domain.ErrCommitNotFound
}

func (m *mockProvider) StatusEntries(_ context.Context) ([]domain.IndexEntry, error) {
	return nil, nil
}

func (m *mockProvider) Close() error {
	m.closeCalled = true
	return nil
}

// mockRenderer implements domain.Renderer for testing.
type mockRenderer struct{}

func (m *mockRenderer) Render(_ context.Context, _ *domain.Graph) (*domain.Artifact, error) {
	return &domain.Artifact{}, nil
}

// mockViewer implements domain.Viewer for testing.
type mockViewer struct{}

func (m *mockViewer) Show(_ context.Context, _ string) error { return nil }

// mockSketcher implements domain.Sketcher for testing.
type mockSketcher struct {
	output *domain.SketchOutput
	err    error
	viewer domain.Viewer
}

func (m *mockSketcher) Sketch(_ context.Context) (*domain.SketchOutput, error) {
	return m.output, m.err
}

// testDeps builds a full set of working dependencies around the given sketcher.
func testDeps(sketcher *mockSketcher, stdout, stderr *bytes.Buffer) (*Dependencies, *mockProvider) {
	provider := &mockProvider{}
	deps := &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func() (*AppConfig, error) {
			return &AppConfig{OutputDir: "/tmp", DotBinary: "dot"}, nil
		},
		ProviderFactory: func(_ string, _ Logger) (domain.RepositoryProvider, error) {
			return provider, nil
		},
		RendererFactory: func(_ *AppConfig, _ Logger) domain.Renderer { return &mockRenderer{} },
		ViewerFactory:   func(_ *AppConfig, _ Logger) domain.Viewer { return &mockViewer{} },
		SketcherFactory: func(
			_ domain.RepositoryProvider,
			_ domain.Renderer,
			view domain.Viewer,
			_ Logger,
		) domain.Sketcher {
			sketcher.viewer = view
			return sketcher
		},
		Stdout: stdout,
		Stderr: stderr,
	}
	return deps, provider
}

func resetFlags() {
	outputDir = ""
	noView = false
	verbose = false
}

func executeCmd(t *testing.T, deps *Dependencies, args ...string) error {
	t.Helper()
	resetFlags()
	defer resetFlags()

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestNewRootCmd(t *testing.T) {
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	require.NotNil(t, cmd)
	assert.Equal(t, "gitsketch [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)

	assert.NotNil(t, cmd.Flags().Lookup("output"))
	assert.NotNil(t, cmd.Flags().Lookup("no-view"))
	assert.NotNil(t, cmd.Flags().Lookup("verbose"))
}

func TestRunSketch_NilDependencies(t *testing.T) {
	err := executeCmd(t, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependencies not configured")
}

func TestRunSketch_Success(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sketcher := &mockSketcher{
		output: &domain.SketchOutput{
			CommitCount: 3,
			NodeCount:   5,
			EdgeCount:   4,
			Artifact:    domain.Artifact{DotPath: "/tmp/gitsketch.dot", PDFPath: "/tmp/gitsketch.pdf"},
		},
	}
	deps, provider := testDeps(sketcher, &stdout, &stderr)

	err := executeCmd(t, deps)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gitsketch.pdf\n", stdout.String())
	assert.Empty(t, stderr.String())
	assert.True(t, provider.closeCalled)
}

func TestRunSketch_ConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	deps, _ := testDeps(&mockSketcher{output: &domain.SketchOutput{}}, &stdout, &stderr)
	deps.ConfigLoader = func() (*AppConfig, error) {
		return nil, errors.New("bad style file")
	}

	err := executeCmd(t, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRunSketch_NotARepository(t *testing.T) {
	var stdout, stderr bytes.Buffer
	deps, _ := testDeps(&mockSketcher{output: &domain.SketchOutput{}}, &stdout, &stderr)
	deps.ProviderFactory = func(path string, _ Logger) (domain.RepositoryProvider, error) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	err := executeCmd(t, deps, "/no/repo/here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository: /no/repo/here")
}

func TestRunSketch_SketchFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	deps, _ := testDeps(&mockSketcher{err: errors.New("ancestry walk failed")}, &stdout, &stderr)

	err := executeCmd(t, deps)
	require.Error(t, err)
	assert.Empty(t, stdout.String())
}

func TestRunSketch_RenderFailureWarnsAndReportsDot(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sketcher := &mockSketcher{
		output: &domain.SketchOutput{
			Artifact:  domain.Artifact{DotPath: "/tmp/gitsketch.dot"},
			RenderErr: fmt.Errorf("%w: dot missing", domain.ErrRenderFailed),
		},
	}
	deps, _ := testDeps(sketcher, &stdout, &stderr)

	err := executeCmd(t, deps)
	require.NoError(t, err, "render failure is best-effort, not fatal")

	// Falls back to reporting the DOT path and warns on stderr
	assert.Equal(t, "/tmp/gitsketch.dot\n", stdout.String())
	assert.Contains(t, stderr.String(), "warning:")
	assert.Contains(t, stderr.String(), "rendering failed")
}

func TestRunSketch_NoViewFlagSkipsViewer(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sketcher := &mockSketcher{output: &domain.SketchOutput{}}
	deps, _ := testDeps(sketcher, &stdout, &stderr)

	err := executeCmd(t, deps, "--no-view")
	require.NoError(t, err)
	assert.Nil(t, sketcher.viewer)
}

func TestRunSketch_ViewerWiredByDefault(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sketcher := &mockSketcher{output: &domain.SketchOutput{}}
	deps, _ := testDeps(sketcher, &stdout, &stderr)

	err := executeCmd(t, deps)
	require.NoError(t, err)
	assert.NotNil(t, sketcher.viewer)
}
