// Package domain defines the core business entities and interfaces for gitsketch.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
)

// Domain errors for repository access and rendering.
var (
	// ErrRepositoryNotFound indicates the specified path is not a valid Git repository.
	ErrRepositoryNotFound = errors.New("git repository not found at specified path")

	// ErrCommitNotFound indicates a commit id could not be resolved to an object.
	ErrCommitNotFound = errors.New("commit object not found")

	// ErrUnresolvedReference indicates a reference could not be resolved to a
	// commit id. The builder skips such references and continues.
	ErrUnresolvedReference = errors.New("reference does not resolve to a commit")

	// ErrRenderFailed indicates the external renderer could not produce the
	// display artifact. Non-fatal: the assembled graph remains valid.
	ErrRenderFailed = errors.New("graph rendering failed")

	// ErrViewerFailed indicates the viewer refresh could not be triggered.
	ErrViewerFailed = errors.New("viewer refresh failed")
)

// HeadState describes the repository HEAD at collection time.
type HeadState struct {
	// Unborn is true when the repository has no commits at all. All other
	// fields are meaningless in that case.
	Unborn bool

	// Detached is true when HEAD points directly at a commit.
	Detached bool

	// Target is the commit HEAD resolves to. Valid when not unborn.
	Target CommitID

	// Branch is the resolved branch short name. Valid when attached.
	Branch string
}

// RefTarget is one named reference and the commit it resolves to.
type RefTarget struct {
	Name   string
	Target CommitID
}

// RepositoryProvider exposes read access to commits, references, and the
// working-index status of one repository. Implementations must peel annotated
// tags so that RefTarget.Target is always a commit id.
type RepositoryProvider interface {
	// Head reports the HEAD state, including the unborn case.
	Head(ctx context.Context) (*HeadState, error)

	// LocalBranches lists branches under refs/heads with their targets.
	LocalBranches(ctx context.Context) ([]RefTarget, error)

	// RemoteBranches lists remote-tracking branches with their targets.
	RemoteBranches(ctx context.Context) ([]RefTarget, error)

	// Tags lists tag references with their peeled commit targets.
	Tags(ctx context.Context) ([]RefTarget, error)

	// Commit reads one commit: first message line and ordered parent ids.
	// Returns ErrCommitNotFound when the id does not resolve.
	Commit(ctx context.Context, id CommitID) (*CommitRecord, error)

	// StatusEntries lists staged working-index deviations, filtered to the
	// four surfaced StatusKinds. Empty for bare repositories.
	StatusEntries(ctx context.Context) ([]IndexEntry, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Renderer turns an assembled Graph into a display artifact.
type Renderer interface {
	Render(ctx context.Context, g *Graph) (*Artifact, error)
}

// Viewer displays or refreshes a rendered artifact. Best-effort: failures
// never invalidate the graph or the artifact.
type Viewer interface {
	Show(ctx context.Context, path string) error
}

// Sketcher runs one full build-render-view pass.
type Sketcher interface {
	Sketch(ctx context.Context) (*SketchOutput, error)
}
