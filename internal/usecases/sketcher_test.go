package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// mockRenderer implements domain.Renderer for testing.
type mockRenderer struct {
	artifact *domain.Artifact
	err      error
	rendered *domain.Graph
}

func (m *mockRenderer) Render(_ context.Context, g *domain.Graph) (*domain.Artifact, error) {
	m.rendered = g
	return m.artifact, m.err
}

// mockViewer implements domain.Viewer for testing.
type mockViewer struct {
	shownPath string
	called    bool
	err       error
}

func (m *mockViewer) Show(_ context.Context, path string) error {
	m.called = true
	m.shownPath = path
	return m.err
}

func sketchProvider() *fakeProvider {
	return &fakeProvider{
		head:   attachedHead("main", "tip"),
		locals: []domain.RefTarget{{Name: "main", Target: "tip"}},
		commits: commitTable(
			commitRec("base", "init"),
			commitRec("tip", "feature: add parser", "base"),
		),
	}
}

func TestSketch_Success(t *testing.T) {
	renderer := &mockRenderer{
		artifact: &domain.Artifact{DotPath: "/tmp/g.dot", PDFPath: "/tmp/g.pdf"},
	}
	view := &mockViewer{}

	s := NewGraphSketcher(sketchProvider(), renderer, view, &mockLogger{})
	out, err := s.Sketch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 2, out.CommitCount)
	assert.Equal(t, 4, out.NodeCount) // HEAD, main, two commits
	assert.Equal(t, "/tmp/g.pdf", out.Artifact.PDFPath)
	assert.NoError(t, out.RenderErr)
	assert.NoError(t, out.ViewErr)

	require.NotNil(t, renderer.rendered)
	assert.True(t, view.called)
	assert.Equal(t, "/tmp/g.pdf", view.shownPath)
}

func TestSketch_BuildFailureAborts(t *testing.T) {
	provider := sketchProvider()
	provider.headErr = errors.New("repository unreadable")
	renderer := &mockRenderer{}
	view := &mockViewer{}

	s := NewGraphSketcher(provider, renderer, view, &mockLogger{})
	out, err := s.Sketch(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, renderer.rendered, "nothing may be rendered when the build fails")
	assert.False(t, view.called)
}

func TestSketch_RenderFailureKeepsGraphResult(t *testing.T) {
	renderer := &mockRenderer{
		artifact: &domain.Artifact{DotPath: "/tmp/g.dot"},
		err:      errors.New("dot binary missing"),
	}
	view := &mockViewer{}

	s := NewGraphSketcher(sketchProvider(), renderer, view, &mockLogger{})
	out, err := s.Sketch(context.Background())
	require.NoError(t, err, "render failure is not fatal")
	require.NotNil(t, out)

	assert.ErrorIs(t, out.RenderErr, domain.ErrRenderFailed)
	assert.Equal(t, "/tmp/g.dot", out.Artifact.DotPath, "partial artifact is kept")
	assert.Equal(t, 4, out.NodeCount)
	assert.False(t, view.called)
}

func TestSketch_ViewerFailureIsRecorded(t *testing.T) {
	renderer := &mockRenderer{
		artifact: &domain.Artifact{DotPath: "/tmp/g.dot", PDFPath: "/tmp/g.pdf"},
	}
	view := &mockViewer{err: errors.New("no display")}

	s := NewGraphSketcher(sketchProvider(), renderer, view, &mockLogger{})
	out, err := s.Sketch(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, out.ViewErr, domain.ErrViewerFailed)
	assert.Equal(t, "/tmp/g.pdf", out.Artifact.PDFPath)
}

func TestSketch_NilViewerSkipsViewing(t *testing.T) {
	renderer := &mockRenderer{
		artifact: &domain.Artifact{DotPath: "/tmp/g.dot", PDFPath: "/tmp/g.pdf"},
	}

	s := NewGraphSketcher(sketchProvider(), renderer, nil, &mockLogger{})
	out, err := s.Sketch(context.Background())
	require.NoError(t, err)
	assert.NoError(t, out.ViewErr)
}
