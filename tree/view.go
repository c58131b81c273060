package tree

// ViewID addresses a node inside a View.
type ViewID int

// NoView is the ViewID of a missing view node.
const NoView ViewID = -1

// View is a non-owning projection of a subset of a Tree. Each view node maps
// to one tree node; its view parent is the nearest kept ancestor, so a view
// may be a forest. ViewIDs are assigned in pre-order.
type View struct {
	tree     *Tree
	nodes    []NodeID
	parent   []ViewID
	children [][]ViewID
	depth    []int
	roots    []ViewID
}

// NewView projects the attached nodes of t for which keep returns true.
func NewView(t *Tree, keep func(NodeID) bool) *View {
	v := &View{tree: t}
	var visit func(n NodeID, up ViewID)
	visit = func(n NodeID, up ViewID) {
		next := up
		if keep(n) {
			next = v.add(n, up)
		}
		for _, c := range t.nodes[n].children {
			visit(c, next)
		}
	}
	visit(t.root, NoView)
	return v
}

// Sub projects the nodes of v for which keep returns true. The result maps
// onto the same underlying tree.
func (v *View) Sub(keep func(ViewID) bool) *View {
	sub := &View{tree: v.tree}
	var visit func(id ViewID, up ViewID)
	visit = func(id ViewID, up ViewID) {
		next := up
		if keep(id) {
			next = sub.add(v.nodes[id], up)
		}
		for _, c := range v.children[id] {
			visit(c, next)
		}
	}
	for _, r := range v.roots {
		visit(r, NoView)
	}
	return sub
}

func (v *View) add(n NodeID, parent ViewID) ViewID {
	id := ViewID(len(v.nodes))
	v.nodes = append(v.nodes, n)
	v.parent = append(v.parent, parent)
	v.children = append(v.children, nil)
	if parent == NoView {
		v.depth = append(v.depth, 0)
		v.roots = append(v.roots, id)
	} else {
		v.depth = append(v.depth, v.depth[parent]+1)
		v.children[parent] = append(v.children[parent], id)
	}
	return id
}

// Tree returns the projected tree.
func (v *View) Tree() *Tree { return v.tree }

// Len returns the number of view nodes.
func (v *View) Len() int { return len(v.nodes) }

// Target returns the tree node behind a view node.
func (v *View) Target(id ViewID) NodeID { return v.nodes[id] }

// Node returns the tree node behind a view node.
func (v *View) Node(id ViewID) *Node { return v.tree.Node(v.nodes[id]) }

// Parent returns the view parent, NoView for roots.
func (v *View) Parent(id ViewID) ViewID { return v.parent[id] }

// Children returns the ordered view children. The slice must not be modified.
func (v *View) Children(id ViewID) []ViewID { return v.children[id] }

// Depth returns the distance of id from its view root.
func (v *View) Depth(id ViewID) int { return v.depth[id] }

// Roots returns the view roots in tree order.
func (v *View) Roots() []ViewID { return v.roots }

// IsLeaf reports a view node without view children.
func (v *View) IsLeaf(id ViewID) bool { return len(v.children[id]) == 0 }

// IsSelectable reports a view leaf backed by an item.
func (v *View) IsSelectable(id ViewID) bool {
	return v.IsLeaf(id) && v.Node(id).Kind == Item
}

// Selectable returns every selectable view node in pre-order.
func (v *View) Selectable() []ViewID {
	var out []ViewID
	for id := range v.nodes {
		if v.IsSelectable(ViewID(id)) {
			out = append(out, ViewID(id))
		}
	}
	return out
}

// SelectableBelow returns the selectable view nodes in the subtree of id,
// id included, in pre-order.
func (v *View) SelectableBelow(id ViewID) []ViewID {
	var out []ViewID
	stack := []ViewID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.IsSelectable(cur) {
			out = append(out, cur)
		}
		children := v.children[cur]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// Targets maps view nodes to their tree nodes.
func (v *View) Targets(ids []ViewID) []NodeID {
	out := make([]NodeID, len(ids))
	for i, id := range ids {
		out[i] = v.nodes[id]
	}
	return out
}
