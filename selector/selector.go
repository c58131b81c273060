// Package selector picks the items an annotator should label next from a
// view of the tree that still requires verification.
//
// Three strategies are available:
//   - top-down: spreads the budget over as many top-level branches as
//     possible, descending only when the budget allows (default)
//   - farthest-leaves: dynamic program maximizing depth-weighted pairwise
//     distance between the chosen items
//   - weighted: samples leaf categories without replacement, weighting
//     shallow branches higher
//
// Only items that are leaves of the view are selectable. Results are item
// NodeIDs sorted ascending. Randomized strategies derive a fresh generator
// from their seed on every call, so equal inputs give equal outputs.
package selector

import (
	"math/rand/v2"
	"slices"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/tree"
)

// Strategy names accepted by New.
const (
	TopDownName        = "top-down"
	FarthestLeavesName = "farthest-leaves"
	WeightedName       = "weighted"
)

// DefaultName is the strategy used when none is configured.
const DefaultName = TopDownName

// Selector chooses up to k items from a view.
type Selector interface {
	Name() string
	Select(v *tree.View, k int) ([]tree.NodeID, error)
}

// Options configures the strategies built by New.
type Options struct {
	Seed   uint64
	Weight DepthWeight
}

// Names lists the available strategies.
func Names() []string {
	return []string{TopDownName, FarthestLeavesName, WeightedName}
}

// New builds the strategy registered under name.
func New(name string, opts Options) (Selector, error) {
	switch name {
	case TopDownName, "":
		return NewTopDown(opts.Seed), nil
	case FarthestLeavesName:
		w := opts.Weight
		if w == (DepthWeight{}) {
			w = DefaultDepthWeight
		}
		return NewFarthestLeaves(w), nil
	case WeightedName:
		return NewWeighted(opts.Seed), nil
	default:
		return nil, errors.WithHintf(errors.Newf("unknown selector %q", name),
			"available selectors: %v", Names())
	}
}

// streamPCG fixes the PCG stream so that a seed alone determines the output.
const streamPCG = 0x9e3779b97f4a7c15

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, streamPCG))
}

func checkBudget(k int) error {
	if k < 0 {
		return errors.NewInvalidStatef("negative sample size %d", k)
	}
	return nil
}

// sortedTargets maps view nodes to tree nodes and sorts them.
func sortedTargets(v *tree.View, ids []tree.ViewID) []tree.NodeID {
	out := v.Targets(ids)
	slices.Sort(out)
	return out
}

// categories is a projection of a view used to spread picks over branches.
// It keeps every category with at least one selectable item below it and
// remembers those items.
type categories struct {
	source *tree.View
	view   *tree.View
	items  [][]tree.ViewID // per projected node, selectable items of source
}

// categoriesOf projects v onto its categories.
func categoriesOf(v *tree.View) *categories { return project(v, false) }

// branchesOf projects v onto its categories and selectable items, so that
// an item held directly by a category competes with that category's
// subcategories. Every leaf of the projection is an item.
func branchesOf(v *tree.View) *categories { return project(v, true) }

func project(v *tree.View, withItems bool) *categories {
	below := make([]int, v.Len())
	for id := v.Len() - 1; id >= 0; id-- {
		vid := tree.ViewID(id)
		if v.IsSelectable(vid) {
			below[id]++
		}
		if p := v.Parent(vid); p != tree.NoView {
			below[p] += below[id]
		}
	}
	keep := func(id tree.ViewID) bool {
		if v.Node(id).IsCategory() {
			return below[id] > 0
		}
		return withItems && v.IsSelectable(id)
	}

	c := &categories{source: v}
	c.view = v.Sub(keep)

	// Sub assigns ids in the same pre-order, so the source ids of the kept
	// nodes appear in increasing order.
	for id := 0; id < v.Len(); id++ {
		if keep(tree.ViewID(id)) {
			c.items = append(c.items, v.SelectableBelow(tree.ViewID(id)))
		}
	}
	return c
}

// levelOrder yields the categories level by level. Within a level the nodes
// are shuffled, grouped by parent, and the groups interleaved so that every
// parent contributes its first child before any contributes its second. A
// nil rng keeps the natural order.
func levelOrder(v *tree.View, rng *rand.Rand) []tree.ViewID {
	var out []tree.ViewID
	level := slices.Clone(v.Roots())
	for len(level) > 0 {
		shuffled := slices.Clone(level)
		if rng != nil {
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
		}
		out = append(out, interleave(v, shuffled)...)

		var next []tree.ViewID
		for _, id := range level {
			next = append(next, v.Children(id)...)
		}
		level = next
	}
	return out
}

func interleave(v *tree.View, level []tree.ViewID) []tree.ViewID {
	var parents []tree.ViewID
	groups := make(map[tree.ViewID][]tree.ViewID)
	for _, id := range level {
		p := v.Parent(id)
		if _, ok := groups[p]; !ok {
			parents = append(parents, p)
		}
		groups[p] = append(groups[p], id)
	}

	out := make([]tree.ViewID, 0, len(level))
	for round := 0; len(out) < len(level); round++ {
		for _, p := range parents {
			if round < len(groups[p]) {
				out = append(out, groups[p][round])
			}
		}
	}
	return out
}

// picker accumulates distinct selectable items.
type picker struct {
	rng    *rand.Rand
	k      int
	picked map[tree.ViewID]bool
	order  []tree.ViewID
}

func newPicker(rng *rand.Rand, k int) *picker {
	return &picker{rng: rng, k: k, picked: make(map[tree.ViewID]bool, k)}
}

func (p *picker) full() bool { return len(p.order) >= p.k }

func (p *picker) add(id tree.ViewID) bool {
	if p.full() || p.picked[id] {
		return false
	}
	p.picked[id] = true
	p.order = append(p.order, id)
	return true
}

// oneOf draws a uniformly random unpicked item from pool and reports
// whether it added one.
func (p *picker) oneOf(pool []tree.ViewID) bool {
	var free []tree.ViewID
	for _, id := range pool {
		if !p.picked[id] {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		return false
	}
	return p.add(free[p.rng.IntN(len(free))])
}

// topUp fills the remaining budget. Leaves outside every pool come first,
// in random order. Then the pools take turns, each giving at most one new
// item per round.
func (p *picker) topUp(pools [][]tree.ViewID, leaves []tree.ViewID) {
	if p.full() {
		return
	}
	covered := make(map[tree.ViewID]bool)
	for _, pool := range pools {
		for _, id := range pool {
			covered[id] = true
		}
	}
	var uncovered []tree.ViewID
	for _, id := range leaves {
		if !covered[id] {
			uncovered = append(uncovered, id)
		}
	}
	for _, id := range p.shuffled(uncovered) {
		if p.full() {
			return
		}
		p.add(id)
	}

	for !p.full() {
		progressed := false
		for _, pool := range pools {
			if p.oneOf(pool) {
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

func (p *picker) shuffled(ids []tree.ViewID) []tree.ViewID {
	out := slices.Clone(ids)
	p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
