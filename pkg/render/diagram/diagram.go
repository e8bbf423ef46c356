// Package diagram encodes ownership trees into textual diagram descriptions.
//
// The encoder performs a depth-first pre-order walk over the tree, remapping
// each node's external id to a fresh rendering-safe identifier (node_0,
// node_1, ...) and emitting one node declaration per node plus one edge
// declaration per parent-child relationship. Style classes carry fixed fill
// colors per entity type.
//
// The resulting [Description] is engine-neutral and serializes two ways:
// [Description.Mermaid] for in-browser rendering by the mermaid engine, and
// [Description.DOT] for local Graphviz rendering via [RenderSVG].
package diagram

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jsterling/ownerchart/pkg/ownership"
)

// maxLabelLen caps node labels in the diagram. Truncation is display-only and
// lossy; the full name stays on the original ownership node.
const maxLabelLen = 30

// Fixed fill colors per entity type. Unknown entities are deliberately left
// without a style class and render in the engine's default style.
const (
	ColorUKCompany    = "#3B82F6"
	ColorNonUKCompany = "#EF4444"
	ColorIndividual   = "#10B981"
)

// NodeDecl is one node declaration in the diagram description.
type NodeDecl struct {
	ID    string               // rendering-safe identifier (node_<k>)
	Label string               // sanitized, truncated display name
	Class ownership.EntityType // style class; TypeUnknown means no class
}

// EdgeDecl is one directed parent-to-child edge declaration.
type EdgeDecl struct {
	From string
	To   string
}

// ClassDef binds a style class name to its fill color.
type ClassDef struct {
	Name ownership.EntityType
	Fill string
}

// Description is the encoder output: an ordered, engine-neutral diagram
// description plus the mapping from original node ids to diagram ids.
type Description struct {
	Nodes   []NodeDecl
	Edges   []EdgeDecl
	Classes []ClassDef

	// IDMap maps original node ids to their diagram ids in insertion order
	// of first visit. Reading the full name for a diagram node goes through
	// this map back to the original tree.
	IDMap map[string]string

	// Truncated counts cycle back edges: places where the walk connected to
	// an already-declared node instead of descending again.
	Truncated int
}

// classDefs is appended after every walk: exactly one definition per known
// entity type, in fixed order.
var classDefs = []ClassDef{
	{Name: ownership.TypeUKCompany, Fill: ColorUKCompany},
	{Name: ownership.TypeNonUKCompany, Fill: ColorNonUKCompany},
	{Name: ownership.TypeIndividual, Fill: ColorIndividual},
}

// Encode walks the tree and produces its diagram description.
//
// The input is validated structurally first; malformed trees (missing id or
// name, duplicate ids) fail fast rather than producing a partially valid
// description. A node reached again through a cycle is not re-declared and
// not re-entered: only the edge to its already-allocated diagram id is
// emitted, so the walk is bounded even on malformed cyclic input.
func Encode(root *ownership.Node) (*Description, error) {
	if err := ownership.Validate(root); err != nil {
		return nil, err
	}

	d := &Description{IDMap: map[string]string{}}

	var walk func(n *ownership.Node, parentID string)
	walk = func(n *ownership.Node, parentID string) {
		if id, visited := d.IDMap[n.ID]; visited {
			// Cycle: connect to the existing declaration and truncate.
			if parentID != "" {
				d.Edges = append(d.Edges, EdgeDecl{From: parentID, To: id})
			}
			d.Truncated++
			return
		}

		id := fmt.Sprintf("node_%d", len(d.IDMap))
		d.IDMap[n.ID] = id
		d.Nodes = append(d.Nodes, NodeDecl{
			ID:    id,
			Label: sanitizeLabel(n.Name),
			Class: n.Type.Normalize(),
		})
		if parentID != "" {
			d.Edges = append(d.Edges, EdgeDecl{From: parentID, To: id})
		}
		for _, c := range n.Children {
			walk(c, id)
		}
	}
	walk(root, "")

	d.Classes = append(d.Classes, classDefs...)
	return d, nil
}

// sanitizeLabel strips quote characters and truncates to maxLabelLen runes.
func sanitizeLabel(name string) string {
	cleaned := strings.NewReplacer(`'`, "", `"`, "").Replace(name)
	runes := []rune(cleaned)
	if len(runes) > maxLabelLen {
		return string(runes[:maxLabelLen])
	}
	return cleaned
}

// Mermaid serializes the description as a top-down mermaid flowchart. Node
// declarations carry their style class inline (:::class); the three class
// definitions follow the edge declarations.
func (d *Description) Mermaid() string {
	var buf bytes.Buffer
	buf.WriteString("graph TD\n")

	for _, n := range d.Nodes {
		fmt.Fprintf(&buf, "    %s[%q]", n.ID, n.Label)
		if n.Class != ownership.TypeUnknown {
			fmt.Fprintf(&buf, ":::%s", n.Class)
		}
		buf.WriteString("\n")
	}
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "    %s --> %s\n", e.From, e.To)
	}
	for _, c := range d.Classes {
		fmt.Fprintf(&buf, "    classDef %s fill:%s,color:#fff\n", c.Name, c.Fill)
	}
	return buf.String()
}

// DOT serializes the description as a Graphviz digraph for local rendering.
// Class fill colors become per-node fillcolor attributes; unclassed nodes
// keep the default fill.
func (d *Description) DOT() string {
	fills := map[ownership.EntityType]string{}
	for _, c := range d.Classes {
		fills[c.Name] = c.Fill
	}

	var buf bytes.Buffer
	buf.WriteString("digraph ownership {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.Label)}
		if fill, ok := fills[n.Class]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill), "fontcolor=white")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}
