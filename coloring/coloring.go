// Package coloring propagates manual labels through a tree and extracts the
// part of it that still needs an annotator.
//
// Propagation runs in two passes over the participating nodes. The upward
// pass unions every manual label into all ancestors of its item; the
// downward pass hands a parent's set to every child that received nothing
// on the way up. A node whose final set holds exactly one label is resolved.
package coloring

import (
	"strings"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

// Participating returns, per NodeID, whether the node takes part in
// propagation. Items deferred with the skip label do not, nor do categories
// without a participating descendant item.
func Participating(t *tree.Tree) []bool {
	in := make([]bool, t.Cap())
	var visit func(n tree.NodeID) bool
	visit = func(n tree.NodeID) bool {
		node := t.Node(n)
		if node.IsItem() {
			in[n] = node.Labels.Manual != tree.Skip
			return in[n]
		}
		for _, c := range node.Children() {
			if visit(c) {
				in[n] = true
			}
		}
		return in[n]
	}
	visit(t.Root())
	return in
}

// Propagate colors every participating node of t from the manual labels on
// its items.
func Propagate(t *tree.Tree) error {
	in := Participating(t)
	if err := checkPreconditions(t, in); err != nil {
		return err
	}

	for _, n := range t.Items() {
		node := t.Node(n)
		if !in[n] || node.Labels.Manual == "" {
			continue
		}
		label := node.Labels.Manual
		node.Labels.Predicted = tree.LabelSet{label}
		for p := node.Parent(); p != tree.None; p = t.Node(p).Parent() {
			parent := t.Node(p)
			if parent.Labels.Predicted.Contains(label) {
				break
			}
			parent.Labels.Predicted = parent.Labels.Predicted.With(label)
		}
	}

	inherit(t, t.Root(), in)
	return nil
}

// inherit runs the downward pass iteratively to survive deep taxonomies.
func inherit(t *tree.Tree, root tree.NodeID, in []bool) {
	stack := []tree.NodeID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		colors := t.Node(n).Labels.Predicted
		for _, c := range t.Node(n).Children() {
			if !in[c] {
				continue
			}
			child := t.Node(c)
			if len(child.Labels.Predicted) == 0 {
				child.Labels.Predicted = colors.Clone()
			}
			stack = append(stack, c)
		}
	}
}

func checkPreconditions(t *tree.Tree, in []bool) error {
	informative := false
	var err error
	t.Walk(func(n tree.NodeID) bool {
		node := t.Node(n)
		switch {
		case node.Labels.Predicted != nil:
			err = errors.NewInvalidStatef("node %q was already propagated", node.Name)
		case node.IsCategory() && node.Labels.Manual != "":
			err = errors.NewInvalidStatef("category %q carries manual label %q", node.Name, node.Labels.Manual)
		case strings.Contains(node.Labels.Manual, tree.Separator):
			err = errors.NewInvalidStatef("item %d (%q) carries more than one manual label: %q",
				node.ID, node.Name, node.Labels.Manual)
		case in[n] && node.IsItem() && node.Labels.Manual != "":
			informative = true
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	if !informative {
		return errors.WithHint(
			errors.NewInvalidStatef("no item carries an informative manual label"),
			"label at least one item with something other than ?")
	}
	return nil
}

// RequiringVerification returns a view over the participating nodes whose
// predicted set is not a singleton. Nodes missing a prediction are included,
// so on an unpropagated tree the view covers every participating node.
func RequiringVerification(t *tree.Tree) *tree.View {
	in := Participating(t)
	return tree.NewView(t, func(n tree.NodeID) bool {
		return in[n] && t.Node(n).Labels.RequiresVerification()
	})
}
