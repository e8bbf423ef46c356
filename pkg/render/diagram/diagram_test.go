package diagram

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jsterling/ownerchart/pkg/ownership"
)

func sampleTree() *ownership.Node {
	return &ownership.Node{
		ID: "gb-1", Name: "Acme Holdings Ltd", Type: ownership.TypeUKCompany,
		Children: []*ownership.Node{
			{ID: "de-1", Name: "Acme GmbH", Type: ownership.TypeNonUKCompany},
			{ID: "p-1", Name: "Jane Doe", Type: ownership.TypeIndividual, Children: []*ownership.Node{
				{ID: "x-1", Name: "Mystery Trust", Type: "trust"},
			}},
		},
	}
}

func TestEncode_NodeAndEdgeCounts(t *testing.T) {
	tests := []struct {
		name      string
		root      *ownership.Node
		wantNodes int
		wantEdges int
	}{
		{"single node", &ownership.Node{ID: "a", Name: "A", Type: ownership.TypeUKCompany}, 1, 0},
		{"sample tree", sampleTree(), 4, 3},
		{"deep chain", chain(10), 10, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Encode(tt.root)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if len(d.Nodes) != tt.wantNodes {
				t.Errorf("node declarations = %d, want %d", len(d.Nodes), tt.wantNodes)
			}
			if len(d.Edges) != tt.wantEdges {
				t.Errorf("edge declarations = %d, want %d", len(d.Edges), tt.wantEdges)
			}
		})
	}
}

// chain builds a linear tree of n nodes.
func chain(n int) *ownership.Node {
	root := &ownership.Node{ID: "n0", Name: "N0", Type: ownership.TypeUKCompany}
	cur := root
	for i := 1; i < n; i++ {
		next := &ownership.Node{ID: fmt.Sprintf("n%d", i), Name: fmt.Sprintf("N%d", i), Type: ownership.TypeIndividual}
		cur.Children = []*ownership.Node{next}
		cur = next
	}
	return root
}

func TestEncode_IdentifiersUniqueAndOrdered(t *testing.T) {
	d, err := Encode(sampleTree())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	seen := map[string]bool{}
	for i, n := range d.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate diagram id %q", n.ID)
		}
		seen[n.ID] = true
		if want := fmt.Sprintf("node_%d", i); n.ID != want {
			t.Errorf("node %d id = %q, want %q (pre-order counter)", i, n.ID, want)
		}
	}

	// The remap is keyed by the original ids.
	if d.IDMap["gb-1"] != "node_0" {
		t.Errorf("IDMap[gb-1] = %q, want node_0", d.IDMap["gb-1"])
	}
	if len(d.IDMap) != 4 {
		t.Errorf("IDMap size = %d, want 4", len(d.IDMap))
	}
}

func TestEncode_LabelSanitization(t *testing.T) {
	long := strings.Repeat("A", 45)
	root := &ownership.Node{
		ID: "a", Name: long, Type: ownership.TypeUKCompany,
		Children: []*ownership.Node{
			{ID: "b", Name: `O'Brien "Holdings" Ltd`, Type: ownership.TypeUKCompany},
		},
	}

	d, err := Encode(root)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if got := len([]rune(d.Nodes[0].Label)); got != 30 {
		t.Errorf("long label length = %d, want exactly 30", got)
	}
	if d.Nodes[1].Label != "OBrien Holdings Ltd" {
		t.Errorf("quoted label = %q, want quotes stripped", d.Nodes[1].Label)
	}

	for _, out := range []string{d.Mermaid(), d.DOT()} {
		if !strings.Contains(out, "OBrien") {
			t.Error("sanitized label missing from serialized output")
		}
	}
}

func TestEncode_FixedClassColors(t *testing.T) {
	// Two differently shaped trees must yield identical class definitions.
	for _, root := range []*ownership.Node{sampleTree(), chain(5)} {
		d, err := Encode(root)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if len(d.Classes) != 3 {
			t.Fatalf("class definitions = %d, want 3", len(d.Classes))
		}
		want := map[ownership.EntityType]string{
			ownership.TypeUKCompany:    "#3B82F6",
			ownership.TypeNonUKCompany: "#EF4444",
			ownership.TypeIndividual:   "#10B981",
		}
		for _, c := range d.Classes {
			if want[c.Name] != c.Fill {
				t.Errorf("class %s fill = %s, want %s", c.Name, c.Fill, want[c.Name])
			}
		}
	}
}

func TestEncode_UnknownTypeHasNoClass(t *testing.T) {
	d, err := Encode(sampleTree())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var unknown *NodeDecl
	for i := range d.Nodes {
		if d.Nodes[i].Label == "Mystery Trust" {
			unknown = &d.Nodes[i]
		}
	}
	if unknown == nil {
		t.Fatal("unknown-type node missing from description")
	}
	if unknown.Class != ownership.TypeUnknown {
		t.Errorf("unknown node class = %q", unknown.Class)
	}

	mermaid := d.Mermaid()
	for _, line := range strings.Split(mermaid, "\n") {
		if strings.Contains(line, unknown.ID+"[") && strings.Contains(line, ":::") {
			t.Errorf("unknown-type node should carry no class tag: %q", line)
		}
	}
	if strings.Contains(mermaid, "classDef unknown") {
		t.Error("no class definition may be emitted for unknown")
	}
}

func TestEncode_FailsFastOnMalformedInput(t *testing.T) {
	roots := []*ownership.Node{
		nil,
		{ID: "", Name: "A"},
		{ID: "a", Name: ""},
		{ID: "a", Name: "A", Children: []*ownership.Node{{ID: "a", Name: "B"}}},
	}
	for i, root := range roots {
		if _, err := Encode(root); err == nil {
			t.Errorf("Encode(case %d) should fail fast on malformed input", i)
		}
	}
}

func TestEncode_TruncatesCycles(t *testing.T) {
	a := &ownership.Node{ID: "a", Name: "A", Type: ownership.TypeUKCompany}
	b := &ownership.Node{ID: "b", Name: "B", Type: ownership.TypeUKCompany}
	a.Children = []*ownership.Node{b}
	b.Children = []*ownership.Node{a}

	d, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(d.Nodes) != 2 {
		t.Errorf("cyclic input declared %d nodes, want 2", len(d.Nodes))
	}
	// Forward edge plus the truncated back edge to the existing id.
	if len(d.Edges) != 2 {
		t.Errorf("cyclic input declared %d edges, want 2", len(d.Edges))
	}
	if d.Edges[1] != (EdgeDecl{From: "node_1", To: "node_0"}) {
		t.Errorf("back edge = %+v", d.Edges[1])
	}
	if d.Truncated != 1 {
		t.Errorf("Truncated = %d, want 1", d.Truncated)
	}
}

func TestMermaid_Shape(t *testing.T) {
	d, err := Encode(sampleTree())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	mermaid := d.Mermaid()

	if !strings.HasPrefix(mermaid, "graph TD\n") {
		t.Error("mermaid output must be a top-down flowchart")
	}

	var nodeLines, edgeLines, classLines int
	for _, line := range strings.Split(mermaid, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "classDef "):
			classLines++
		case strings.Contains(trimmed, "-->"):
			edgeLines++
		case strings.HasPrefix(trimmed, "node_"):
			nodeLines++
		}
	}
	if nodeLines != 4 || edgeLines != 3 || classLines != 3 {
		t.Errorf("mermaid lines = %d nodes, %d edges, %d classes; want 4/3/3", nodeLines, edgeLines, classLines)
	}
	if strings.Contains(mermaid, "'") {
		t.Error("mermaid output must not contain single quotes")
	}
}

func TestDOT_Shape(t *testing.T) {
	d, err := Encode(sampleTree())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	dot := d.DOT()

	if !strings.Contains(dot, "digraph ownership") {
		t.Error("DOT output missing digraph declaration")
	}
	if !strings.Contains(dot, "rankdir=TB") {
		t.Error("DOT output must lay out top-down")
	}
	if !strings.Contains(dot, `fillcolor="#3B82F6"`) {
		t.Error("DOT output missing uk_company fill")
	}
	if !strings.Contains(dot, "node_0 -> node_1") {
		t.Error("DOT output missing first edge")
	}
	// The unknown-type node keeps the default fill.
	if strings.Contains(dot, `node_3 [label="Mystery Trust", fillcolor`) {
		t.Error("unknown-type node must not carry a fillcolor")
	}
}
