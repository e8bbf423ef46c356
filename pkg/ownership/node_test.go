package ownership

import (
	"encoding/json"
	"testing"
)

func TestEntityType_Normalize(t *testing.T) {
	tests := []struct {
		in   EntityType
		want EntityType
	}{
		{TypeUKCompany, TypeUKCompany},
		{TypeNonUKCompany, TypeNonUKCompany},
		{TypeIndividual, TypeIndividual},
		{TypeUnknown, TypeUnknown},
		{"trust", TypeUnknown},
		{"", TypeUnknown},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNode_Count(t *testing.T) {
	root := &Node{
		ID: "a", Name: "A",
		Children: []*Node{
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C", Children: []*Node{
				{ID: "d", Name: "D"},
			}},
		},
	}
	if got := root.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}

	var nilNode *Node
	if got := nilNode.Count(); got != 0 {
		t.Errorf("Count() on nil = %d, want 0", got)
	}
}

func TestNode_CountTerminatesOnCycle(t *testing.T) {
	a := &Node{ID: "a", Name: "A"}
	b := &Node{ID: "b", Name: "B"}
	a.Children = []*Node{b}
	b.Children = []*Node{a}

	if got := a.Count(); got != 2 {
		t.Errorf("Count() with cycle = %d, want 2", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		root    *Node
		wantErr bool
	}{
		{"nil root", nil, true},
		{"valid", &Node{ID: "a", Name: "A", Children: []*Node{{ID: "b", Name: "B"}}}, false},
		{"missing id", &Node{ID: "", Name: "A"}, true},
		{"missing name", &Node{ID: "a", Name: " "}, true},
		{"child missing id", &Node{ID: "a", Name: "A", Children: []*Node{{Name: "B"}}}, true},
		{"duplicate ids", &Node{ID: "a", Name: "A", Children: []*Node{{ID: "a", Name: "B"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.root); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ToleratesCycle(t *testing.T) {
	a := &Node{ID: "a", Name: "A"}
	b := &Node{ID: "b", Name: "B"}
	a.Children = []*Node{b}
	b.Children = []*Node{a}

	if err := Validate(a); err != nil {
		t.Errorf("Validate() on cyclic tree = %v, want nil (cycles are tolerated)", err)
	}
}

func TestResponse_JSONShape(t *testing.T) {
	raw := `{
		"root_company": {
			"id": "c1",
			"name": "Acme Ltd",
			"type": "uk_company",
			"company_number": "01234567",
			"children": [
				{"id": "p1", "name": "Jane Doe", "type": "individual",
				 "country_of_residence": "United Kingdom",
				 "nature_of_control": ["voting-rights-50-to-75-percent"],
				 "error": "psc lookup timed out"}
			]
		},
		"total_nodes": 2,
		"processing_time": 0.42,
		"errors": ["partial"]
	}`

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	root := resp.RootCompany
	if root.CompanyNumber != "01234567" {
		t.Errorf("CompanyNumber = %q", root.CompanyNumber)
	}
	child := root.Children[0]
	if child.Type != TypeIndividual || child.CountryOfResidence != "United Kingdom" {
		t.Errorf("child decoded incorrectly: %+v", child)
	}
	if child.Error != "psc lookup timed out" {
		t.Errorf("child error = %q", child.Error)
	}
	if len(child.NatureOfControl) != 1 {
		t.Errorf("NatureOfControl = %v", child.NatureOfControl)
	}
}

func TestOutline(t *testing.T) {
	root := &Node{
		ID: "a", Name: "A", Type: TypeUKCompany,
		Children: []*Node{
			{ID: "b", Name: "B", Type: "weird"},
			{ID: "c", Name: "C", Type: TypeIndividual, Children: []*Node{
				{ID: "d", Name: "D", Type: TypeNonUKCompany},
			}},
		},
	}

	rows := Outline(root)
	if len(rows) != 4 {
		t.Fatalf("Outline() rows = %d, want 4", len(rows))
	}

	wantOrder := []string{"a", "b", "c", "d"}
	wantDepth := []int{0, 1, 1, 2}
	for i, row := range rows {
		if row.ID != wantOrder[i] {
			t.Errorf("row %d id = %q, want %q", i, row.ID, wantOrder[i])
		}
		if row.Depth != wantDepth[i] {
			t.Errorf("row %d depth = %d, want %d", i, row.Depth, wantDepth[i])
		}
	}

	if rows[1].Type != TypeUnknown {
		t.Errorf("unrecognized type should normalize to unknown, got %q", rows[1].Type)
	}
	if !rows[0].HasChildren || rows[1].HasChildren {
		t.Error("HasChildren flags incorrect")
	}
}
