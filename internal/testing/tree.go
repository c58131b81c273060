package testing

import (
	"testing"

	"github.com/teranos/treelabel/tree"
)

// Spec describes a fixture node. Build assigns ids in pre-order starting at 1.
type Spec struct {
	Name     string
	Item     bool
	Label    string
	Children []Spec
}

// Cat describes a category fixture.
func Cat(name string, children ...Spec) Spec {
	return Spec{Name: name, Children: children}
}

// Item describes an unlabelled item fixture.
func Item(name string) Spec {
	return Spec{Name: name, Item: true}
}

// Labelled describes an item carrying a manual label.
func Labelled(name, label string) Spec {
	return Spec{Name: name, Item: true, Label: label}
}

// Fixture is a built tree plus a name index. Fixture names must be unique.
type Fixture struct {
	t     testing.TB
	Tree  *tree.Tree
	nodes map[string]tree.NodeID
}

// Build materializes root as a tree. Root must be a category.
func Build(t testing.TB, root Spec) *Fixture {
	t.Helper()
	if root.Item {
		t.Fatalf("fixture root %q must be a category", root.Name)
	}

	f := &Fixture{t: t, nodes: make(map[string]tree.NodeID)}
	next := int64(1)
	f.Tree = tree.New(next, root.Name)
	f.nodes[root.Name] = f.Tree.Root()

	var add func(parent tree.NodeID, s Spec)
	add = func(parent tree.NodeID, s Spec) {
		next++
		var (
			id  tree.NodeID
			err error
		)
		if s.Item {
			id, err = f.Tree.AddItem(parent, next, s.Name, nil)
		} else {
			id, err = f.Tree.AddCategory(parent, next, s.Name, nil)
		}
		if err != nil {
			t.Fatalf("fixture %q: %v", s.Name, err)
		}
		if _, dup := f.nodes[s.Name]; dup {
			t.Fatalf("fixture name %q used twice", s.Name)
		}
		f.nodes[s.Name] = id
		if s.Label != "" {
			if err := f.Tree.SetManual(id, s.Label); err != nil {
				t.Fatalf("fixture %q: %v", s.Name, err)
			}
		}
		for _, c := range s.Children {
			add(id, c)
		}
	}
	for _, c := range root.Children {
		add(f.Tree.Root(), c)
	}
	return f
}

// N returns the node id of the fixture named name.
func (f *Fixture) N(name string) tree.NodeID {
	f.t.Helper()
	id, ok := f.nodes[name]
	if !ok {
		f.t.Fatalf("no fixture node named %q", name)
	}
	return id
}

// Names maps node ids back to fixture names, preserving order.
func (f *Fixture) Names(ids []tree.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = f.Tree.Node(id).Name
	}
	return out
}

// Predicted returns the predicted set of the fixture named name.
func (f *Fixture) Predicted(name string) tree.LabelSet {
	f.t.Helper()
	return f.Tree.Node(f.N(name)).Labels.Predicted
}
