package usecases

import (
	"context"
	"fmt"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// GraphSketcher runs one full sketch pass: build the graph, render it, and
// trigger the viewer. Building is the correctness-critical step and any
// failure there aborts the run. Rendering and viewing are side effects
// performed after the graph is finalized; their failures are recorded in
// the output but never discard the assembled graph.
type GraphSketcher struct {
	provider domain.RepositoryProvider
	renderer domain.Renderer
	viewer   domain.Viewer
	logger   Logger
}

// NewGraphSketcher creates a GraphSketcher with the given collaborators.
// viewer may be nil, in which case the viewer step is skipped.
func NewGraphSketcher(
	provider domain.RepositoryProvider,
	renderer domain.Renderer,
	viewer domain.Viewer,
	log Logger,
) *GraphSketcher {
	return &GraphSketcher{
		provider: provider,
		renderer: renderer,
		viewer:   viewer,
		logger:   log,
	}
}

// Sketch builds, renders, and displays the repository graph.
func (s *GraphSketcher) Sketch(ctx context.Context) (*domain.SketchOutput, error) {
	builder := NewGraphBuilder(s.provider, s.logger)
	g, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository graph: %w", err)
	}

	out := &domain.SketchOutput{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}
	for _, n := range g.Nodes {
		if n.Kind == domain.NodeCommit {
			out.CommitCount++
		}
	}

	s.logger.Info(ctx, "repository graph built", map[string]interface{}{
		"commits": out.CommitCount,
		"nodes":   out.NodeCount,
		"edges":   out.EdgeCount,
	})

	artifact, err := s.renderer.Render(ctx, g)
	if artifact != nil {
		// A partial artifact (DOT written, PDF missing) is still useful.
		out.Artifact = *artifact
	}
	if err != nil {
		out.RenderErr = fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
		s.logger.Error(ctx, "rendering failed; graph remains valid", err, nil)
		return out, nil
	}

	s.logger.Info(ctx, "graph rendered", map[string]interface{}{
		"dot": artifact.DotPath,
		"pdf": artifact.PDFPath,
	})

	if s.viewer == nil || artifact.PDFPath == "" {
		return out, nil
	}
	if err := s.viewer.Show(ctx, artifact.PDFPath); err != nil {
		out.ViewErr = fmt.Errorf("%w: %w", domain.ErrViewerFailed, err)
		s.logger.Warn(ctx, "viewer refresh failed", map[string]interface{}{
			"pdf":   artifact.PDFPath,
			"error": err.Error(),
		})
	}

	return out, nil
}
