// Package domain defines the core business entities and interfaces for gitsketch.
package domain

// ShortIDLen is the number of hash characters shown in display labels.
const ShortIDLen = 6

// CommitID is the full content hash of a commit.
// Two CommitIDs are equal iff the underlying hashes are equal.
type CommitID string

// Short returns the abbreviated form used in display labels.
func (id CommitID) Short() string {
	if len(id) <= ShortIDLen {
		return string(id)
	}
	return string(id[:ShortIDLen])
}

// CommitRecord represents one commit as read from the repository provider.
// It is immutable once created and scoped to a single graph build.
type CommitRecord struct {
	// ID is the full commit hash.
	ID CommitID

	// Message is the commit message, reduced to its first line when the
	// record enters the builder's intern table.
	Message string

	// Parents holds the parent commit IDs in original order.
	// The index determines merge-edge numbering.
	Parents []CommitID
}

// RefKind classifies a named repository pointer.
type RefKind int

const (
	// RefHeadAttached is HEAD pointing at a branch.
	RefHeadAttached RefKind = iota

	// RefHeadDetached is HEAD pointing directly at a commit.
	RefHeadDetached

	// RefLocalBranch is a branch under refs/heads.
	RefLocalBranch

	// RefRemoteBranch is a remote-tracking branch.
	RefRemoteBranch

	// RefTag is a tag reference (annotated tags are peeled to commits).
	RefTag
)

// String returns a short name for logging.
func (k RefKind) String() string {
	switch k {
	case RefHeadAttached:
		return "head"
	case RefHeadDetached:
		return "head-detached"
	case RefLocalBranch:
		return "branch"
	case RefRemoteBranch:
		return "remote-branch"
	case RefTag:
		return "tag"
	default:
		return "unknown"
	}
}

// ReferenceRecord represents one named pointer collected from the repository.
type ReferenceRecord struct {
	// Name is the display name ("HEAD", branch short name, tag name).
	Name string

	// Kind classifies the reference.
	Kind RefKind

	// Target is the commit the reference resolves to.
	// Empty for RefHeadAttached, which points at a branch instead.
	Target CommitID

	// Branch is the resolved branch short name, set only for RefHeadAttached.
	Branch string
}

// StatusKind classifies a staged working-index deviation.
// Only these four kinds are surfaced; everything else is dropped.
type StatusKind int

const (
	StatusNew StatusKind = iota
	StatusModified
	StatusDeleted
	StatusRenamed
)

// Tag returns the short status tag shown next to a path in the index node.
func (k StatusKind) Tag() string {
	switch k {
	case StatusNew:
		return "new"
	case StatusModified:
		return "mod"
	case StatusDeleted:
		return "del"
	case StatusRenamed:
		return "mv"
	default:
		return "?"
	}
}

// IndexEntry represents one file in the working index deviating from HEAD.
type IndexEntry struct {
	Path   string
	Status StatusKind
}

// NodeKind classifies a graph node for styling.
type NodeKind int

const (
	NodeCommit NodeKind = iota
	NodeHeadAttached
	NodeHeadDetached
	NodeLocalBranch
	NodeRemoteBranch
	NodeTag
	NodeIndex
)

// String returns the style-table key for the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeCommit:
		return "commit"
	case NodeHeadAttached:
		return "head-attached"
	case NodeHeadDetached:
		return "head-detached"
	case NodeLocalBranch:
		return "local-branch"
	case NodeRemoteBranch:
		return "remote-branch"
	case NodeTag:
		return "tag"
	case NodeIndex:
		return "index"
	default:
		return "unknown"
	}
}

// EdgeKind classifies a graph edge for styling.
type EdgeKind int

const (
	// EdgeReference links a reference node to its target (dashed).
	EdgeReference EdgeKind = iota

	// EdgeParent links a single-parent commit to its parent (unlabeled).
	EdgeParent

	// EdgeMergeParent links a merge commit to one parent, labeled with the
	// 1-based parent index.
	EdgeMergeParent
)

// String returns the style-table key for the kind.
func (k EdgeKind) String() string {
	switch k {
	case EdgeReference:
		return "reference"
	case EdgeParent:
		return "parent"
	case EdgeMergeParent:
		return "merge-parent"
	default:
		return "unknown"
	}
}

// Node is one typed node of the assembled graph.
type Node struct {
	// ID is the node identity: full commit hash for commits, the reference
	// name for branches/tags, "HEAD" and "index" for the singletons.
	ID string

	// Kind selects the visual category.
	Kind NodeKind

	// Label is the primary display text. For commits this is the name part
	// of the first message line, already escaped for display.
	Label string

	// Detail holds secondary label lines: the commit subject (a single
	// blank space when the message has no separator), or the index file
	// entries. Empty for reference nodes.
	Detail []string
}

// Edge is one typed edge of the assembled graph.
type Edge struct {
	From string
	To   string
	Kind EdgeKind

	// Label is set only for EdgeMergeParent ("1".."N").
	Label string
}

// Graph is the assembled output handed to the renderer.
// Nodes and edges are emitted in deterministic order.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Artifact describes the files produced by one render.
type Artifact struct {
	// DotPath is the written DOT description.
	DotPath string

	// PDFPath is the rendered document, empty if the dot binary failed.
	PDFPath string
}

// SketchOutput summarizes one completed sketch run.
type SketchOutput struct {
	// CommitCount is the number of commit nodes in the graph.
	CommitCount int

	// NodeCount and EdgeCount describe the full assembled graph.
	NodeCount int
	EdgeCount int

	// Artifact describes the rendered files, zero-valued when rendering
	// failed before producing anything.
	Artifact Artifact

	// RenderErr and ViewErr record the best-effort side effects. A non-nil
	// value here does not invalidate the assembled graph.
	RenderErr error
	ViewErr   error
}
