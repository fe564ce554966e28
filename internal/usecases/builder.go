// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// Logger defines the logging interface required by the use cases.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// GraphBuilder builds the typed commit graph for one repository state.
// It collects references, walks the ancestor closure of every branch and
// HEAD root, deduplicates commits by content hash, and assembles nodes and
// edges ready for rendering.
//
// A builder holds build-scoped state and is not safe for concurrent use;
// construct one per invocation.
type GraphBuilder struct {
	provider domain.RepositoryProvider
	logger   Logger

	// interned maps commit ids to their single canonical record.
	// order preserves first-intern order so output is deterministic.
	interned map[domain.CommitID]*domain.CommitRecord
	order    []domain.CommitID
}

// NewGraphBuilder creates a GraphBuilder with the given dependencies.
func NewGraphBuilder(provider domain.RepositoryProvider, log Logger) *GraphBuilder {
	return &GraphBuilder{
		provider: provider,
		logger:   log,
	}
}

// Build runs one full graph construction pass.
//
// Provider read failures during the ancestor walk are fatal: an incomplete
// ancestry graph is worse than none. References that do not resolve to a
// readable commit are skipped with a warning so the rest of the picture
// still renders.
func (b *GraphBuilder) Build(ctx context.Context) (*domain.Graph, error) {
	b.interned = make(map[domain.CommitID]*domain.CommitRecord)
	b.order = nil

	refs, err := b.collectReferences(ctx)
	if err != nil {
		return nil, err
	}

	refs, err = b.materialize(ctx, refs)
	if err != nil {
		return nil, err
	}

	entries, err := b.provider.StatusEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read working-index status: %w", err)
	}

	g := b.assemble(refs, entries)

	b.logger.Debug(ctx, "graph assembled", map[string]interface{}{
		"commits": len(b.order),
		"refs":    len(refs),
		"nodes":   len(g.Nodes),
		"edges":   len(g.Edges),
	})

	return g, nil
}

// collectReferences enumerates HEAD, remote-tracking branches, local
// branches, and tags, in that order. An unborn repository yields no
// references at all.
func (b *GraphBuilder) collectReferences(ctx context.Context) ([]domain.ReferenceRecord, error) {
	head, err := b.provider.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	if head.Unborn {
		b.logger.Debug(ctx, "repository has no commits", nil)
		return nil, nil
	}

	var refs []domain.ReferenceRecord
	if head.Detached {
		refs = append(refs, domain.ReferenceRecord{
			Name:   "HEAD",
			Kind:   domain.RefHeadDetached,
			Target: head.Target,
		})
	} else {
		// The branch's own reference supplies the commit link; HEAD only
		// points at the branch node.
		refs = append(refs, domain.ReferenceRecord{
			Name:   "HEAD",
			Kind:   domain.RefHeadAttached,
			Branch: head.Branch,
		})
	}

	remotes, err := b.provider.RemoteBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote branches: %w", err)
	}
	for _, r := range remotes {
		refs = append(refs, domain.ReferenceRecord{
			Name:   r.Name,
			Kind:   domain.RefRemoteBranch,
			Target: r.Target,
		})
	}

	locals, err := b.provider.LocalBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list local branches: %w", err)
	}
	for _, l := range locals {
		refs = append(refs, domain.ReferenceRecord{
			Name:   l.Name,
			Kind:   domain.RefLocalBranch,
			Target: l.Target,
		})
	}

	tags, err := b.provider.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	for _, t := range tags {
		refs = append(refs, domain.ReferenceRecord{
			Name:   t.Name,
			Kind:   domain.RefTag,
			Target: t.Target,
		})
	}

	return refs, nil
}

// materialize interns every commit the references require: full ancestor
// walks for HEAD and branch targets, a direct intern (no ancestry
// expansion) for tag targets. References whose target commit cannot be
// found are dropped with a warning and excluded from the result.
func (b *GraphBuilder) materialize(
	ctx context.Context,
	refs []domain.ReferenceRecord,
) ([]domain.ReferenceRecord, error) {
	kept := refs[:0]
	for _, ref := range refs {
		switch ref.Kind {
		case domain.RefHeadAttached:
			// Points at a branch node, nothing to walk here.
			kept = append(kept, ref)

		case domain.RefHeadDetached, domain.RefLocalBranch, domain.RefRemoteBranch:
			err := b.walk(ctx, ref.Target)
			if errors.Is(err, domain.ErrUnresolvedReference) {
				b.warnUnresolved(ctx, ref, err)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to walk ancestry of %s: %w", ref.Name, err)
			}
			kept = append(kept, ref)

		case domain.RefTag:
			err := b.internTarget(ctx, ref.Target)
			if errors.Is(err, domain.ErrUnresolvedReference) {
				b.warnUnresolved(ctx, ref, err)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to resolve tag %s: %w", ref.Name, err)
			}
			kept = append(kept, ref)
		}
	}
	return kept, nil
}

// walk interns the full ancestor closure of root. Iterative so deep
// histories cannot overflow the stack; the intern table makes reconverging
// ancestry (diamonds) terminate, since a commit is expanded at most once.
// Idempotent across repeated roots.
//
// Only the root fetch may report ErrUnresolvedReference, the dangling-
// reference case the caller skips. A missing object deeper in the walk is
// repository corruption and propagates as-is: ancestry must be complete or
// absent, never silently truncated.
func (b *GraphBuilder) walk(ctx context.Context, root domain.CommitID) error {
	if _, ok := b.interned[root]; ok {
		return nil
	}

	first, err := b.provider.Commit(ctx, root)
	if err != nil {
		if errors.Is(err, domain.ErrCommitNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrUnresolvedReference, root.Short())
		}
		return err
	}
	b.intern(first)

	stack := []*domain.CommitRecord{first}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, parent := range rec.Parents {
			if _, ok := b.interned[parent]; ok {
				continue
			}
			pc, err := b.provider.Commit(ctx, parent)
			if err != nil {
				return fmt.Errorf("failed to read parent %s of %s: %w",
					parent.Short(), rec.ID.Short(), err)
			}
			b.intern(pc)
			stack = append(stack, pc)
		}
	}

	return nil
}

// internTarget interns a single commit without expanding its ancestry.
// Used for tag targets, whose history is not walked. A missing target is
// a dangling reference, reported as ErrUnresolvedReference.
func (b *GraphBuilder) internTarget(ctx context.Context, id domain.CommitID) error {
	if _, ok := b.interned[id]; ok {
		return nil
	}
	rec, err := b.provider.Commit(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCommitNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrUnresolvedReference, id.Short())
		}
		return err
	}
	b.intern(rec)
	return nil
}

// intern stores the record under its content hash. The first intern of an
// id wins; later interns of the same id are ignored, so the table never
// holds two records for one commit. The message is reduced to its first
// line here, the only place records enter the build.
func (b *GraphBuilder) intern(rec *domain.CommitRecord) *domain.CommitRecord {
	if existing, ok := b.interned[rec.ID]; ok {
		return existing
	}
	rec.Message = firstLine(rec.Message)
	b.interned[rec.ID] = rec
	b.order = append(b.order, rec.ID)
	return rec
}

func (b *GraphBuilder) warnUnresolved(ctx context.Context, ref domain.ReferenceRecord, err error) {
	b.logger.Warn(ctx, "skipping unresolvable reference", map[string]interface{}{
		"name":   ref.Name,
		"kind":   ref.Kind.String(),
		"target": string(ref.Target),
		"error":  err.Error(),
	})
}

// assemble combines references, interned commits, and the working-index
// entries into the output graph.
func (b *GraphBuilder) assemble(refs []domain.ReferenceRecord, entries []domain.IndexEntry) *domain.Graph {
	g := &domain.Graph{}

	if len(entries) > 0 {
		g.Nodes = append(g.Nodes, indexNode(entries))
	}

	for _, ref := range refs {
		node, edge := referenceNode(ref)
		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, edge)
	}

	for _, id := range b.order {
		rec := b.interned[id]
		name, subject := SplitSubject(rec.Message)
		g.Nodes = append(g.Nodes, domain.Node{
			ID:     string(id),
			Kind:   domain.NodeCommit,
			Label:  EscapeLabel(name),
			Detail: []string{EscapeLabel(subject)},
		})

		merge := len(rec.Parents) > 1
		for i, parent := range rec.Parents {
			// A tag-only intern may reference parents that were never
			// materialized; emitting those edges would dangle.
			if _, ok := b.interned[parent]; !ok {
				continue
			}
			edge := domain.Edge{
				From: string(id),
				To:   string(parent),
				Kind: domain.EdgeParent,
			}
			if merge {
				edge.Kind = domain.EdgeMergeParent
				edge.Label = strconv.Itoa(i + 1)
			}
			g.Edges = append(g.Edges, edge)
		}
	}

	return g
}

// indexNode aggregates the working-index entries into one node, sorted by
// path so the label is stable across runs.
func indexNode(entries []domain.IndexEntry) domain.Node {
	sorted := make([]domain.IndexEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	lines := make([]string, 0, len(sorted))
	for _, e := range sorted {
		lines = append(lines, fmt.Sprintf("%s (%s)", e.Path, e.Status.Tag()))
	}
	return domain.Node{
		ID:     "index",
		Kind:   domain.NodeIndex,
		Label:  "index",
		Detail: lines,
	}
}

// referenceNode maps one reference record to its node and dashed edge.
// Attached HEAD points at the branch node by name; every other reference
// points at its target commit.
func referenceNode(ref domain.ReferenceRecord) (domain.Node, domain.Edge) {
	var kind domain.NodeKind
	target := string(ref.Target)

	switch ref.Kind {
	case domain.RefHeadAttached:
		kind = domain.NodeHeadAttached
		target = ref.Branch
	case domain.RefHeadDetached:
		kind = domain.NodeHeadDetached
	case domain.RefLocalBranch:
		kind = domain.NodeLocalBranch
	case domain.RefRemoteBranch:
		kind = domain.NodeRemoteBranch
	case domain.RefTag:
		kind = domain.NodeTag
	}

	node := domain.Node{ID: ref.Name, Kind: kind, Label: ref.Name}
	edge := domain.Edge{From: ref.Name, To: target, Kind: domain.EdgeReference}
	return node, edge
}

// SplitSubject splits a first message line on the first ": " separator.
// The left part names the commit, the right is the subject. A line without
// the separator is all name, with a single blank space as the subject so
// label layouts keep their line structure.
func SplitSubject(line string) (name, subject string) {
	if parts := strings.SplitN(line, ": ", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return line, " "
}

// EscapeLabel escapes the characters graphviz disallows in label text.
func EscapeLabel(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
