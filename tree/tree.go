// Package tree holds the labelled taxonomy: an arena of Category and Item
// nodes addressed by NodeID, plus non-owning views over subsets of it.
package tree

import (
	"slices"
	"strings"

	"github.com/teranos/treelabel/errors"
)

// NodeID addresses a node inside a Tree's arena. IDs are stable for the
// lifetime of the tree; pruning detaches nodes but never reuses their slot.
type NodeID int

// None is the NodeID of a missing node, e.g. the parent of the root.
const None NodeID = -1

// Kind distinguishes internal taxonomy nodes from labelable leaves.
type Kind uint8

const (
	Category Kind = iota
	Item
)

func (k Kind) String() string {
	switch k {
	case Category:
		return "category"
	case Item:
		return "item"
	default:
		return "unknown"
	}
}

// Node is a single taxonomy entry.
type Node struct {
	ID     int64
	Name   string
	Kind   Kind
	Attrs  map[string]string
	Labels Labels

	parent   NodeID
	children []NodeID
	detached bool
}

// Parent returns the parent of the node, None for the root.
func (n *Node) Parent() NodeID { return n.parent }

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []NodeID { return n.children }

// IsItem reports whether the node is a labelable leaf.
func (n *Node) IsItem() bool { return n.Kind == Item }

// IsCategory reports whether the node is an internal taxonomy node.
func (n *Node) IsCategory() bool { return n.Kind == Category }

// Tree is a rooted, ordered taxonomy.
type Tree struct {
	nodes []Node
	root  NodeID
	items map[int64]NodeID
}

// New creates a tree holding only its root category.
func New(id int64, name string) *Tree {
	t := &Tree{items: make(map[int64]NodeID)}
	t.nodes = append(t.nodes, Node{ID: id, Name: name, Kind: Category, parent: None})
	t.root = 0
	return t
}

// Root returns the root category.
func (t *Tree) Root() NodeID { return t.root }

// Node returns the node stored under id. The pointer stays valid until the
// next Add call.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

// Cap returns the arena size, detached nodes included.
func (t *Tree) Cap() int { return len(t.nodes) }

// AddCategory attaches a new category under parent.
func (t *Tree) AddCategory(parent NodeID, id int64, name string, attrs map[string]string) (NodeID, error) {
	return t.add(parent, Category, id, name, attrs)
}

// AddItem attaches a new item under parent. Item ids must be unique.
func (t *Tree) AddItem(parent NodeID, id int64, name string, attrs map[string]string) (NodeID, error) {
	if existing, ok := t.items[id]; ok {
		return None, errors.NewMalformedRecordf("duplicate item id %d (first seen as %q)", id, t.nodes[existing].Name)
	}
	n, err := t.add(parent, Item, id, name, attrs)
	if err != nil {
		return None, err
	}
	t.items[id] = n
	return n, nil
}

func (t *Tree) add(parent NodeID, kind Kind, id int64, name string, attrs map[string]string) (NodeID, error) {
	if parent < 0 || int(parent) >= len(t.nodes) || t.nodes[parent].detached {
		return None, errors.NewInvalidStatef("parent %d is not part of the tree", parent)
	}
	if t.nodes[parent].Kind != Category {
		return None, errors.NewInvalidStatef("cannot attach %q under item %q", name, t.nodes[parent].Name)
	}
	n := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{ID: id, Name: name, Kind: kind, Attrs: attrs, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, n)
	return n, nil
}

// ItemByID looks up an item by its external id.
func (t *Tree) ItemByID(id int64) (NodeID, bool) {
	n, ok := t.items[id]
	if !ok || t.nodes[n].detached {
		return None, false
	}
	return n, true
}

// Walk visits attached nodes in pre-order until fn returns false.
func (t *Tree) Walk(fn func(NodeID) bool) {
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		children := t.nodes[n].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Items returns every attached item in pre-order.
func (t *Tree) Items() []NodeID {
	var out []NodeID
	t.Walk(func(n NodeID) bool {
		if t.nodes[n].Kind == Item {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Categories returns every attached category in pre-order, root first.
func (t *Tree) Categories() []NodeID {
	var out []NodeID
	t.Walk(func(n NodeID) bool {
		if t.nodes[n].Kind == Category {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Empty reports a tree whose root has no children.
func (t *Tree) Empty() bool { return len(t.nodes[t.root].children) == 0 }

// Depth returns the number of edges between n and the root.
func (t *Tree) Depth(n NodeID) int {
	d := 0
	for p := t.nodes[n].parent; p != None; p = t.nodes[p].parent {
		d++
	}
	return d
}

// Ancestors returns the chain from the root down to the parent of n.
func (t *Tree) Ancestors(n NodeID) []NodeID {
	var out []NodeID
	for p := t.nodes[n].parent; p != None; p = t.nodes[p].parent {
		out = append(out, p)
	}
	slices.Reverse(out)
	return out
}

// CategoryPath renders the ">" joined names of the categories above n.
func (t *Tree) CategoryPath(n NodeID) string {
	ancestors := t.Ancestors(n)
	names := make([]string, len(ancestors))
	for i, a := range ancestors {
		names[i] = t.nodes[a].Name
	}
	return strings.Join(names, ">")
}

// SetManual records the annotator's label for an item. An empty label clears
// it.
func (t *Tree) SetManual(n NodeID, label string) error {
	node := &t.nodes[n]
	if node.Kind != Item {
		return errors.NewInvalidStatef("manual label %q on category %q", label, node.Name)
	}
	node.Labels.Manual = label
	return nil
}

// MarkSelected flags an item as chosen for verification. Selection is never
// cleared.
func (t *Tree) MarkSelected(n NodeID) {
	t.nodes[n].Labels.Selected = true
}

// Prune detaches childless categories until none remain and returns how many
// were removed. The root is kept even when it ends up empty.
func (t *Tree) Prune() int {
	removed := 0
	for {
		pass := t.pruneOnce()
		if pass == 0 {
			return removed
		}
		removed += pass
	}
}

// pruneOnce runs a post-order sweep so cascades collapse within one pass.
func (t *Tree) pruneOnce() int {
	removed := 0
	var visit func(n NodeID)
	visit = func(n NodeID) {
		node := &t.nodes[n]
		kept := node.children[:0]
		for _, c := range node.children {
			visit(c)
			child := &t.nodes[c]
			if child.Kind == Category && len(child.children) == 0 {
				child.detached = true
				removed++
				continue
			}
			kept = append(kept, c)
		}
		node.children = kept
	}
	visit(t.root)
	return removed
}

// CountItems returns the number of attached items.
func (t *Tree) CountItems() int { return len(t.Items()) }
