// Package render provides the Graphviz DOT renderer for assembled graphs.
// It translates node and edge kinds into visual styling through a fixed
// style table, writes the DOT description, and invokes the external dot
// binary to produce a PDF.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	"github.com/gitsketch/gitsketch/internal/domain"
)

// Logger defines the logging interface for the render adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// Styles maps a node or edge kind key to its graphviz attributes.
// Keys are the String() values of domain.NodeKind and domain.EdgeKind,
// plus "node-defaults" and "edge-defaults" applied to every node and edge.
type Styles map[string]map[string]string

// DefaultStyles returns the built-in style table. Commit nodes carry no
// entry here; their appearance is the HTML label composed per node.
func DefaultStyles() Styles {
	return Styles{
		"node-defaults": {"color": "gray50", "margin": "0.05,0.02"},
		"edge-defaults": {"arrowsize": "0.7", "color": "gray50"},

		"head-attached": {"style": "filled", "shape": "doubleoctagon", "fontsize": "12", "color": "goldenrod"},
		"head-detached": {"style": "filled", "shape": "doubleoctagon", "fontsize": "12", "color": "violet"},
		"local-branch":  {"style": "filled", "shape": "octagon", "fontsize": "12", "color": "gold"},
		"remote-branch": {"style": "filled", "shape": "octagon", "fontsize": "12", "color": "khaki"},
		"tag":           {"style": "filled", "shape": "house", "fontsize": "12", "color": "turquoise"},
		"index":         {"shape": "record", "fontsize": "10"},

		"reference":    {"style": "dashed"},
		"merge-parent": {"fontsize": "8", "fontcolor": "gray50"},
	}
}

// Merge overlays the given overrides onto the table, kind by kind.
// Attributes absent from an override keep their built-in values.
func (s Styles) Merge(overrides map[string]map[string]string) {
	for kind, attrs := range overrides {
		if s[kind] == nil {
			s[kind] = map[string]string{}
		}
		for k, v := range attrs {
			s[kind][k] = v
		}
	}
}

// Options configures a DotRenderer.
type Options struct {
	// OutputDir receives the gitsketch.dot and gitsketch.pdf files.
	OutputDir string

	// DotBinary is the graphviz layout command, "dot" by default.
	DotBinary string

	// StyleOverrides replaces individual attributes of the built-in style
	// table, keyed by kind.
	StyleOverrides map[string]map[string]string
}

// DotRenderer implements domain.Renderer on graphviz.
type DotRenderer struct {
	outputDir string
	dotBinary string
	styles    Styles
	logger    Logger
}

// NewDotRenderer creates a DotRenderer with the resolved style table.
func NewDotRenderer(opts Options, log Logger) *DotRenderer {
	binary := opts.DotBinary
	if binary == "" {
		binary = "dot"
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}

	styles := DefaultStyles()
	styles.Merge(opts.StyleOverrides)

	return &DotRenderer{
		outputDir: outputDir,
		dotBinary: binary,
		styles:    styles,
		logger:    log,
	}
}

// Render writes the DOT description and runs the dot binary over it.
// When the binary fails the artifact still carries the written DOT path,
// so the caller can keep the partial result.
func (r *DotRenderer) Render(ctx context.Context, g *domain.Graph) (*domain.Artifact, error) {
	source := r.Source(g)

	dotPath := filepath.Join(r.outputDir, "gitsketch.dot")
	if err := os.WriteFile(dotPath, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write DOT file: %w", err)
	}

	artifact := &domain.Artifact{DotPath: dotPath}
	pdfPath := filepath.Join(r.outputDir, "gitsketch.pdf")

	cmd := exec.CommandContext(ctx, r.dotBinary, "-Tpdf", "-o", pdfPath, dotPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return artifact, fmt.Errorf("%s failed: %w: %s", r.dotBinary, err, strings.TrimSpace(string(out)))
	}
	artifact.PDFPath = pdfPath

	r.logger.Debug(ctx, "rendered graph", map[string]interface{}{
		"dot": dotPath,
		"pdf": pdfPath,
	})

	return artifact, nil
}

// Source builds the DOT description for the graph. Time moves toward the
// right, matching the usual teaching diagrams.
func (r *DotRenderer) Source(g *domain.Graph) string {
	dg := dot.NewGraph(dot.Directed)
	dg.Attr("rankdir", "RL")

	nodeDefaults := r.styles["node-defaults"]
	edgeDefaults := r.styles["edge-defaults"]
	dg.NodeInitializer(func(n dot.Node) {
		applyAttrs(nodeDefaults, func(k, v string) { n.Attr(k, v) })
	})
	dg.EdgeInitializer(func(e dot.Edge) {
		applyAttrs(edgeDefaults, func(k, v string) { e.Attr(k, v) })
	})

	for _, node := range g.Nodes {
		dn := dg.Node(node.ID)
		switch node.Kind {
		case domain.NodeCommit:
			dn.Attr("label", commitLabel(node))
		case domain.NodeIndex:
			dn.Attr("label", indexLabel(node))
		default:
			dn.Attr("label", node.Label)
		}
		applyAttrs(r.styles[node.Kind.String()], func(k, v string) { dn.Attr(k, v) })
	}

	for _, edge := range g.Edges {
		de := dg.Edge(dg.Node(edge.From), dg.Node(edge.To))
		if edge.Label != "" {
			de.Attr("label", edge.Label)
		}
		applyAttrs(r.styles[edge.Kind.String()], func(k, v string) { de.Attr(k, v) })
	}

	return dg.String()
}

// applyAttrs sets attributes in sorted key order so output is stable.
func applyAttrs(attrs map[string]string, set func(k, v string)) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set(k, attrs[k])
	}
}

// commitLabel composes the three-line HTML label: bold name, italic gray
// subject, blue abbreviated hash. Label text arrives pre-escaped from the
// assembler.
func commitLabel(n domain.Node) dot.HTML {
	subject := " "
	if len(n.Detail) > 0 {
		subject = n.Detail[0]
	}
	return dot.HTML(fmt.Sprintf(
		`<b>%s</b><br/><font point-size="10" color="gray25"><i>%s</i></font><br/><font point-size="10" color="blue">%s</font>`,
		n.Label, subject, domain.CommitID(n.ID).Short()))
}

// indexLabel composes the record label listing the staged entries, one
// left-justified line per file.
func indexLabel(n domain.Node) string {
	return n.Label + "|" + strings.Join(n.Detail, `\l`) + `\l`
}
