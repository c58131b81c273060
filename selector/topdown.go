package selector

import (
	"github.com/teranos/treelabel/tree"
)

// TopDown spends the budget breadth first: one item per top-level branch,
// then one per second-level branch, and so on, until k branches are held.
// A branch is a category or an item sitting directly in a category. A
// category is replaced by its children as they are reached, so the chosen
// branches never overlap.
type TopDown struct {
	Seed uint64
}

// NewTopDown returns a top-down selector seeded with seed.
func NewTopDown(seed uint64) *TopDown {
	return &TopDown{Seed: seed}
}

func (s *TopDown) Name() string { return TopDownName }

// Select returns min(k, selectable) distinct items.
func (s *TopDown) Select(v *tree.View, k int) ([]tree.NodeID, error) {
	if err := checkBudget(k); err != nil {
		return nil, err
	}
	leaves := v.Selectable()
	k = min(k, len(leaves))
	if k == 0 {
		return nil, nil
	}

	rng := newRand(s.Seed)
	branches := branchesOf(v)
	// The projection's leaves are exactly the selectable items, so k
	// disjoint branches are always held once the walk ends.
	chosen := chooseCategories(branches.view, levelOrder(branches.view, rng), k)

	p := newPicker(rng, k)
	for _, b := range chosen {
		p.oneOf(branches.items[b])
	}
	return sortedTargets(v, p.order), nil
}

// chooseCategories walks order, letting every node evict its parent, until k
// nodes are held. The result keeps the order of first selection.
func chooseCategories(v *tree.View, order []tree.ViewID, k int) []tree.ViewID {
	held := make(map[tree.ViewID]bool, k)
	count := 0
	var sequence []tree.ViewID
	for _, id := range order {
		if p := v.Parent(id); p != tree.NoView && held[p] {
			delete(held, p)
			count--
		}
		held[id] = true
		count++
		sequence = append(sequence, id)
		if count == k {
			break
		}
	}

	out := make([]tree.ViewID, 0, count)
	for _, id := range sequence {
		if held[id] {
			out = append(out, id)
		}
	}
	return out
}
