// Package ownership defines the beneficial-ownership data model returned by
// the resolution backend and pure view derivations over it.
//
// A [Node] is one entity (company or individual) in an ownership tree, with
// zero or more children representing entities it owns or controls. Trees are
// immutable once received: every view (diagram description, outline) is
// re-derived from the same tree, never patched in place.
package ownership

import (
	"strings"

	"github.com/jsterling/ownerchart/pkg/errors"
)

// EntityType classifies a node for display purposes only. It determines icon
// and diagram color, never structural behavior.
type EntityType string

// Known entity types. Anything else is treated as [TypeUnknown].
const (
	TypeUKCompany    EntityType = "uk_company"
	TypeNonUKCompany EntityType = "non_uk_company"
	TypeIndividual   EntityType = "individual"
	TypeUnknown      EntityType = "unknown"
)

// Normalize maps unrecognized type strings to [TypeUnknown].
func (t EntityType) Normalize() EntityType {
	switch t {
	case TypeUKCompany, TypeNonUKCompany, TypeIndividual:
		return t
	default:
		return TypeUnknown
	}
}

// Node is one entity in an ownership tree.
type Node struct {
	ID                 string     `json:"id" bson:"id"`
	Name               string     `json:"name" bson:"name"`
	Type               EntityType `json:"type" bson:"type"`
	CompanyNumber      string     `json:"company_number,omitempty" bson:"company_number,omitempty"`
	CountryOfResidence string     `json:"country_of_residence,omitempty" bson:"country_of_residence,omitempty"`
	NatureOfControl    []string   `json:"nature_of_control,omitempty" bson:"nature_of_control,omitempty"`
	Error              string     `json:"error,omitempty" bson:"error,omitempty"`
	Children           []*Node    `json:"children,omitempty" bson:"children,omitempty"`
}

// Response is the backend payload for one resolution request.
type Response struct {
	RootCompany    *Node    `json:"root_company" bson:"root_company"`
	TotalNodes     int      `json:"total_nodes" bson:"total_nodes"`
	ProcessingTime float64  `json:"processing_time" bson:"processing_time"`
	Errors         []string `json:"errors,omitempty" bson:"errors,omitempty"`

	// Cached reports whether this response was served from the local cache
	// rather than the backend. Never serialized.
	Cached bool `json:"-" bson:"-"`
}

// Count returns the number of nodes reachable from n, counting each node at
// most once so that cyclic input terminates.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	seen := map[*Node]bool{}
	var walk func(*Node) int
	walk = func(node *Node) int {
		if node == nil || seen[node] {
			return 0
		}
		seen[node] = true
		total := 1
		for _, c := range node.Children {
			total += walk(c)
		}
		return total
	}
	return walk(n)
}

// Validate checks the structural invariants required before encoding: every
// node carries a non-empty id and name, and distinct nodes never share an id.
// A cycle (the same node reachable twice) is tolerated, not an error; the
// walk simply does not re-enter it.
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "ownership tree has no root")
	}
	seen := map[string]*Node{}
	var walk func(*Node) error
	walk = func(n *Node) error {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidTree, "ownership tree contains a nil node")
		}
		if strings.TrimSpace(n.ID) == "" {
			return errors.New(errors.ErrCodeInvalidTree, "node %q is missing an id", n.Name)
		}
		if strings.TrimSpace(n.Name) == "" {
			return errors.New(errors.ErrCodeInvalidTree, "node %s is missing a name", n.ID)
		}
		if prev, ok := seen[n.ID]; ok {
			if prev == n {
				return nil // cycle; already checked
			}
			return errors.New(errors.ErrCodeInvalidTree, "duplicate node id %s", n.ID)
		}
		seen[n.ID] = n
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}
