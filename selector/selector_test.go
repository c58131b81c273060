package selector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/treelabel/errors"
	tltest "github.com/teranos/treelabel/internal/testing"
	"github.com/teranos/treelabel/tree"
)

func fullView(f *tltest.Fixture) *tree.View {
	return tree.NewView(f.Tree, func(tree.NodeID) bool { return true })
}

// catalog builds a taxonomy of 3 top-level branches with uneven depth.
func catalog(t *testing.T) *tltest.Fixture {
	return tltest.Build(t, tltest.Cat("root",
		tltest.Cat("Food",
			tltest.Cat("Dairy", tltest.Item("milk"), tltest.Item("cheese"), tltest.Item("yogurt")),
			tltest.Cat("Bakery", tltest.Item("bread"), tltest.Item("roll")),
			tltest.Cat("Drinks",
				tltest.Cat("Juice", tltest.Item("orange"), tltest.Item("apple")),
				tltest.Item("water"),
			),
		),
		tltest.Cat("Home",
			tltest.Cat("Cleaning", tltest.Item("soap"), tltest.Item("bleach")),
			tltest.Item("candle"),
		),
		tltest.Cat("Toys", tltest.Item("ball"), tltest.Item("kite")),
	))
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		s, err := New(name, Options{Seed: 1})
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	s, err := New("", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultName, s.Name())

	s, err = New(FarthestLeavesName, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDepthWeight, s.(*FarthestLeaves).Weight)

	_, err = New("random", Options{})
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestRandomizedSelectorsSize(t *testing.T) {
	for _, name := range []string{TopDownName, WeightedName} {
		for k := 0; k <= 16; k++ {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				f := catalog(t)
				v := fullView(f)
				s, err := New(name, Options{Seed: 42})
				require.NoError(t, err)

				got, err := s.Select(v, k)
				require.NoError(t, err)

				leaves := len(v.Selectable())
				assert.Len(t, got, min(k, leaves))

				seen := make(map[tree.NodeID]bool)
				for _, id := range got {
					assert.False(t, seen[id], "duplicate item %q", f.Tree.Node(id).Name)
					seen[id] = true
					assert.True(t, f.Tree.Node(id).IsItem())
				}
				assert.IsIncreasing(t, got)
			})
		}
	}
}

func TestRandomizedSelectorsAreReproducible(t *testing.T) {
	for _, name := range []string{TopDownName, WeightedName} {
		t.Run(name, func(t *testing.T) {
			v := fullView(catalog(t))
			a, err := New(name, Options{Seed: 7})
			require.NoError(t, err)
			b, err := New(name, Options{Seed: 7})
			require.NoError(t, err)

			first, err := a.Select(v, 5)
			require.NoError(t, err)
			second, err := b.Select(v, 5)
			require.NoError(t, err)
			again, err := a.Select(v, 5)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, first, again)
		})
	}
}

func TestNegativeBudget(t *testing.T) {
	v := fullView(catalog(t))
	for _, name := range Names() {
		s, err := New(name, Options{})
		require.NoError(t, err)
		_, err = s.Select(v, -1)
		assert.True(t, errors.IsInvalidState(err), name)
	}
}

func TestEmptyView(t *testing.T) {
	f := catalog(t)
	v := tree.NewView(f.Tree, func(tree.NodeID) bool { return false })
	for _, name := range Names() {
		s, err := New(name, Options{})
		require.NoError(t, err)
		got, err := s.Select(v, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestCategoriesOf(t *testing.T) {
	f := tltest.Build(t, tltest.Cat("root",
		tltest.Cat("A", tltest.Item("p1"), tltest.Cat("A1", tltest.Item("p2"))),
		tltest.Cat("B", tltest.Item("p3")),
	))
	hidden := f.N("p3")
	v := tree.NewView(f.Tree, func(n tree.NodeID) bool { return n != hidden })

	cats := categoriesOf(v)
	require.Equal(t, 3, cats.view.Len(), "B has no selectable item left")
	assert.Equal(t, []string{"root", "A", "A1"}, f.Names(cats.view.Targets([]tree.ViewID{0, 1, 2})))
	assert.Equal(t, []string{"p1", "p2"}, f.Names(v.Targets(cats.items[1])))
	assert.Equal(t, []string{"p2"}, f.Names(v.Targets(cats.items[2])))
}
