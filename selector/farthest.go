package selector

import (
	"math"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

// DepthWeight scores the edge into a node at a given view depth as
// Scale / (depth+1)^Exponent. Steep exponents make shallow branches
// dominate, so the chosen items spread over the main categories instead of
// piling up in one deep subtree.
type DepthWeight struct {
	Scale    float64
	Exponent float64
}

// DefaultDepthWeight is 1000 / (depth+1)^20.
var DefaultDepthWeight = DepthWeight{Scale: 1000, Exponent: 20}

// At returns the weight of a node at depth.
func (w DepthWeight) At(depth int) float64 {
	return w.Scale / math.Pow(float64(depth+1), w.Exponent)
}

// FarthestLeaves selects the items maximizing the weighted sum of pairwise
// distances. The view is re-encoded as a binary tree (first child on the
// left, further siblings chained to the right through zero-weight blank
// nodes) and solved bottom-up. The result is deterministic; ties go to the
// split that sends fewer items left.
type FarthestLeaves struct {
	Weight DepthWeight
}

// NewFarthestLeaves returns the dynamic program selector using w.
func NewFarthestLeaves(w DepthWeight) *FarthestLeaves {
	return &FarthestLeaves{Weight: w}
}

func (s *FarthestLeaves) Name() string { return FarthestLeavesName }

type bnode struct {
	left, right int
	weight      float64
	leaves      int
	target      tree.ViewID
}

const noChild = -1

// Select returns exactly k items, failing when the view holds fewer.
func (s *FarthestLeaves) Select(v *tree.View, k int) ([]tree.NodeID, error) {
	if err := checkBudget(k); err != nil {
		return nil, err
	}
	nodes := s.encode(v)
	total := 0
	if len(nodes) > 0 {
		total = nodes[0].leaves
	}
	if k > total {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrInsufficientLeaves, "cannot find %d items out of %d available", k, total),
			"lower the sample size")
	}
	if k == 0 {
		return nil, nil
	}

	best, choice := solve(nodes, k)
	if math.IsInf(best[0][k], -1) {
		return nil, errors.AssertionFailedf("no feasible split for %d items", k)
	}

	var picked []tree.ViewID
	var collect func(b, j int)
	collect = func(b, j int) {
		if j == 0 {
			return
		}
		n := nodes[b]
		switch {
		case n.left == noChild:
			picked = append(picked, n.target)
		case n.right == noChild:
			collect(n.left, j)
		default:
			j1 := choice[b][j]
			collect(n.left, j1)
			collect(n.right, j-j1)
		}
	}
	collect(0, k)
	return sortedTargets(v, picked), nil
}

// encode builds the binary tree. Parents precede their children in the
// returned slice. Forests hang under a blank super-root.
func (s *FarthestLeaves) encode(v *tree.View) []bnode {
	var nodes []bnode
	newNode := func(weight float64, target tree.ViewID) int {
		nodes = append(nodes, bnode{left: noChild, right: noChild, weight: weight, target: target})
		return len(nodes) - 1
	}

	var encodeView func(id tree.ViewID) int
	// chain attaches children under parent: the first as its left child, the
	// rest below blank nodes linked through right pointers.
	chain := func(parent int, children []tree.ViewID) {
		if len(children) == 0 {
			return
		}
		nodes[parent].left = encodeView(children[0])
		prev := parent
		for _, c := range children[1:] {
			blank := newNode(0, tree.NoView)
			nodes[prev].right = blank
			nodes[blank].left = encodeView(c)
			prev = blank
		}
	}
	encodeView = func(id tree.ViewID) int {
		b := newNode(s.Weight.At(v.Depth(id)), id)
		chain(b, v.Children(id))
		return b
	}

	switch roots := v.Roots(); len(roots) {
	case 0:
		return nil
	case 1:
		encodeView(roots[0])
	default:
		chain(newNode(0, tree.NoView), roots)
	}

	for b := len(nodes) - 1; b >= 0; b-- {
		n := &nodes[b]
		switch {
		case n.left == noChild && n.target != tree.NoView && v.IsSelectable(n.target):
			n.leaves = 1
		case n.left != noChild:
			n.leaves = nodes[n.left].leaves
			if n.right != noChild {
				n.leaves += nodes[n.right].leaves
			}
		}
	}
	return nodes
}

// solve fills best[b][j], the best score of subtree b when j of the n items
// come from inside it and n-j from outside, and the left share chosen for it.
// Infeasible entries hold -Inf.
func solve(nodes []bnode, n int) ([][]float64, [][]int) {
	total := nodes[0].leaves
	best := make([][]float64, len(nodes))
	choice := make([][]int, len(nodes))
	negInf := math.Inf(-1)

	for b := len(nodes) - 1; b >= 0; b-- {
		node := nodes[b]
		hi := min(node.leaves, n)
		lo := max(0, hi-(total-node.leaves))
		row := make([]float64, hi+1)
		for j := range row {
			row[j] = negInf
		}
		var picks []int
		if node.left != noChild && node.right != noChild {
			picks = make([]int, hi+1)
		}

		for j := lo; j <= hi; j++ {
			k := n - j
			cross := float64(j*k) * node.weight
			switch {
			case node.left == noChild:
				row[j] = 0
			case node.right == noChild:
				if sub := at(best[node.left], j); !math.IsInf(sub, -1) {
					row[j] = sub + cross
				}
			default:
				left, right := nodes[node.left], nodes[node.right]
				for j1 := 0; j1 <= j; j1++ {
					j2 := j - j1
					if j1 > left.leaves || j2 > right.leaves {
						continue
					}
					l, r := at(best[node.left], j1), at(best[node.right], j2)
					if math.IsInf(l, -1) || math.IsInf(r, -1) {
						continue
					}
					score := l + r + float64(j1*j2)*(left.weight+right.weight) + cross
					if score > row[j] {
						row[j] = score
						picks[j] = j1
					}
				}
			}
		}
		best[b] = row
		choice[b] = picks
	}
	return best, choice
}

func at(row []float64, j int) float64 {
	if j < 0 || j >= len(row) {
		return math.Inf(-1)
	}
	return row[j]
}
