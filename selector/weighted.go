package selector

import (
	"github.com/teranos/treelabel/tree"
)

// Weighted samples leaf categories without replacement. Every category
// splits its probability mass equally among its children, so a lone
// shallow category outweighs one of many deep siblings. One item is drawn
// per sampled category.
type Weighted struct {
	Seed uint64
}

// NewWeighted returns a weighted sampler seeded with seed.
func NewWeighted(seed uint64) *Weighted {
	return &Weighted{Seed: seed}
}

func (s *Weighted) Name() string { return WeightedName }

// Select returns min(k, selectable) distinct items.
func (s *Weighted) Select(v *tree.View, k int) ([]tree.NodeID, error) {
	if err := checkBudget(k); err != nil {
		return nil, err
	}
	leaves := v.Selectable()
	k = min(k, len(leaves))
	if k == 0 {
		return nil, nil
	}

	rng := newRand(s.Seed)
	cats := categoriesOf(v)
	prob := categoryMass(cats.view)

	var population []tree.ViewID
	var weights []float64
	for id := 0; id < cats.view.Len(); id++ {
		if cats.view.IsLeaf(tree.ViewID(id)) {
			population = append(population, tree.ViewID(id))
			weights = append(weights, prob[id])
		}
	}

	p := newPicker(rng, k)
	var pools [][]tree.ViewID
	for _, c := range s.sample(population, weights, min(k, len(population)), p) {
		pools = append(pools, cats.items[c])
		p.oneOf(cats.items[c])
	}
	p.topUp(pools, leaves)
	return sortedTargets(v, p.order), nil
}

// sample draws n members of population without replacement, each draw
// proportional to the remaining weights.
func (s *Weighted) sample(population []tree.ViewID, weights []float64, n int, p *picker) []tree.ViewID {
	w := append([]float64(nil), weights...)
	out := make([]tree.ViewID, 0, n)
	for len(out) < n {
		total := 0.0
		for _, x := range w {
			total += x
		}
		if total <= 0 {
			break
		}
		r := p.rng.Float64() * total
		chosen := -1
		for i, x := range w {
			if x == 0 {
				continue
			}
			chosen = i
			if r < x {
				break
			}
			r -= x
		}
		out = append(out, population[chosen])
		w[chosen] = 0
	}
	return out
}

// categoryMass assigns every view node the probability of reaching it by
// descending from a uniformly chosen root through uniformly chosen children.
func categoryMass(v *tree.View) []float64 {
	prob := make([]float64, v.Len())
	roots := v.Roots()
	for _, r := range roots {
		prob[r] = 1.0 / float64(len(roots))
	}
	// ViewIDs are pre-order, so parents are assigned before children.
	for id := 0; id < v.Len(); id++ {
		children := v.Children(tree.ViewID(id))
		for _, c := range children {
			prob[c] = prob[id] / float64(len(children))
		}
	}
	return prob
}
