package ownership

// Row is one line of the plain expandable-list view: a node flattened with its
// depth in the tree. The outline is derived from the raw tree, never from the
// diagram description, so the two views stay independent projections of the
// same immutable source.
type Row struct {
	Depth              int
	ID                 string
	Name               string
	Type               EntityType
	CompanyNumber      string
	CountryOfResidence string
	NatureOfControl    []string
	Error              string
	HasChildren        bool
}

// Outline flattens the tree into pre-order rows, children in their given
// order. A node reached again through a cycle is emitted once and not
// re-entered.
func Outline(root *Node) []Row {
	var rows []Row
	seen := map[*Node]bool{}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		rows = append(rows, Row{
			Depth:              depth,
			ID:                 n.ID,
			Name:               n.Name,
			Type:               n.Type.Normalize(),
			CompanyNumber:      n.CompanyNumber,
			CountryOfResidence: n.CountryOfResidence,
			NatureOfControl:    n.NatureOfControl,
			Error:              n.Error,
			HasChildren:        len(n.Children) > 0,
		})
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return rows
}
