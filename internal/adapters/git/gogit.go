// Package git provides adapters for interacting with local Git repositories.
// This package implements the domain.RepositoryProvider interface using go-git/v5.
package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// GoGitProvider implements domain.RepositoryProvider using go-git/v5.
// It exposes read-only access to commits, references, and the staged
// working-index status of one local repository.
type GoGitProvider struct {
	repo   *git.Repository
	path   string
	logger Logger
}

// NewGoGitProvider opens the repository at the given path.
// The path can be either a working directory or a bare repository.
// Returns domain.ErrRepositoryNotFound if the path is not a valid Git repository.
func NewGoGitProvider(path string, log Logger) (*GoGitProvider, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	return &GoGitProvider{
		repo:   repo,
		path:   path,
		logger: log,
	}, nil
}

// Head reports the current HEAD state. A repository whose HEAD reference
// does not resolve (no commits yet) is reported as unborn rather than as
// an error.
func (p *GoGitProvider) Head(ctx context.Context) (*domain.HeadState, error) {
	head, err := p.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			p.logger.Debug(ctx, "HEAD does not resolve; repository is unborn", map[string]interface{}{
				"path": p.path,
			})
			return &domain.HeadState{Unborn: true}, nil
		}
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	state := &domain.HeadState{
		Target:   domain.CommitID(head.Hash().String()),
		Detached: !head.Name().IsBranch(),
	}
	if head.Name().IsBranch() {
		state.Branch = head.Name().Short()
	}

	p.logger.Debug(ctx, "read HEAD state", map[string]interface{}{
		"target":   state.Target.Short(),
		"branch":   state.Branch,
		"detached": state.Detached,
	})

	return state, nil
}

// LocalBranches lists branches under refs/heads with their target commits.
func (p *GoGitProvider) LocalBranches(ctx context.Context) ([]domain.RefTarget, error) {
	iter, err := p.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list local branches: %w", err)
	}

	var out []domain.RefTarget
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		out = append(out, domain.RefTarget{
			Name:   ref.Name().Short(),
			Target: domain.CommitID(ref.Hash().String()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate local branches: %w", err)
	}

	return out, nil
}

// RemoteBranches lists remote-tracking branches with their target commits.
// Symbolic remote refs such as origin/HEAD are skipped; the branch they
// point at is listed on its own.
func (p *GoGitProvider) RemoteBranches(ctx context.Context) ([]domain.RefTarget, error) {
	iter, err := p.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	var out []domain.RefTarget
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !ref.Name().IsRemote() || ref.Type() != plumbing.HashReference {
			return nil
		}
		out = append(out, domain.RefTarget{
			Name:   ref.Name().Short(),
			Target: domain.CommitID(ref.Hash().String()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate remote branches: %w", err)
	}

	return out, nil
}

// Tags lists tag references resolved to commit ids. Annotated tags are
// peeled; tags that do not ultimately point at a commit (tree or blob
// tags) are skipped with a warning.
func (p *GoGitProvider) Tags(ctx context.Context) ([]domain.RefTarget, error) {
	iter, err := p.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var out []domain.RefTarget
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		target, err := p.peelTag(ref)
		if err != nil {
			p.logger.Warn(ctx, "skipping tag that does not point at a commit", map[string]interface{}{
				"tag":   ref.Name().Short(),
				"error": err.Error(),
			})
			return nil
		}
		out = append(out, domain.RefTarget{
			Name:   ref.Name().Short(),
			Target: target,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return out, nil
}

// peelTag resolves a tag reference to the commit it names. Lightweight
// tags point at the commit directly; annotated tags carry a tag object
// that must be peeled.
func (p *GoGitProvider) peelTag(ref *plumbing.Reference) (domain.CommitID, error) {
	tagObj, err := p.repo.TagObject(ref.Hash())
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return domain.CommitID(ref.Hash().String()), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tag object: %w", err)
	}

	commit, err := tagObj.Commit()
	if err != nil {
		return "", fmt.Errorf("%w: annotated tag target is not a commit", domain.ErrUnresolvedReference)
	}
	return domain.CommitID(commit.Hash.String()), nil
}

// Commit reads one commit object: the raw message and the parent ids in
// original order.
func (p *GoGitProvider) Commit(ctx context.Context, id domain.CommitID) (*domain.CommitRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	commit, err := p.repo.CommitObject(plumbing.NewHash(string(id)))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCommitNotFound, id.Short())
		}
		return nil, fmt.Errorf("failed to read commit %s: %w", id.Short(), err)
	}

	rec := &domain.CommitRecord{
		ID:      domain.CommitID(commit.Hash.String()),
		Message: commit.Message,
	}
	for _, parent := range commit.ParentHashes {
		rec.Parents = append(rec.Parents, domain.CommitID(parent.String()))
	}

	return rec, nil
}

// StatusEntries lists staged working-index deviations, filtered to the
// four surfaced kinds. Bare repositories have no worktree and yield an
// empty list.
func (p *GoGitProvider) StatusEntries(ctx context.Context) ([]domain.IndexEntry, error) {
	wt, err := p.repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			p.logger.Debug(ctx, "bare repository; no working index", map[string]interface{}{
				"path": p.path,
			})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var out []domain.IndexEntry
	for path, file := range status {
		kind, ok := stagingKind(file.Staging)
		if !ok {
			continue
		}
		out = append(out, domain.IndexEntry{Path: path, Status: kind})
	}

	p.logger.Debug(ctx, "read working-index status", map[string]interface{}{
		"entries": len(out),
	})

	return out, nil
}

// stagingKind maps a go-git staging status code to the surfaced kinds.
// Everything else, untracked files included, is dropped.
func stagingKind(code git.StatusCode) (domain.StatusKind, bool) {
	switch code {
	case git.Added:
		return domain.StatusNew, true
	case git.Modified:
		return domain.StatusModified, true
	case git.Deleted:
		return domain.StatusDeleted, true
	case git.Renamed:
		return domain.StatusRenamed, true
	default:
		return 0, false
	}
}

// Close releases any resources held by the provider.
// For go-git, this is a no-op as the repository doesn't hold persistent resources.
func (p *GoGitProvider) Close() error {
	return nil
}
