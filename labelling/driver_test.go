package labelling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/treelabel/errors"
	tltest "github.com/teranos/treelabel/internal/testing"
	"github.com/teranos/treelabel/selector"
	"github.com/teranos/treelabel/tree"
)

type transition struct{ from, to State }

func newTestDriver(t *testing.T, opts Options) (*Driver, *[]transition) {
	t.Helper()
	d := NewDriver(selector.NewTopDown(1), opts, zaptest.NewLogger(t).Sugar())
	var seen []transition
	d.OnTransition(func(from, to State) { seen = append(seen, transition{from, to}) })
	return d, &seen
}

func shop(t *testing.T) *tltest.Fixture {
	return tltest.Build(t, tltest.Cat("root",
		tltest.Cat("Food",
			tltest.Cat("Dairy", tltest.Item("milk"), tltest.Item("cheese")),
			tltest.Cat("Bakery", tltest.Item("bread")),
		),
		tltest.Cat("Home", tltest.Item("soap"), tltest.Item("candle")),
		tltest.Cat("Toys", tltest.Item("ball")),
	))
}

func idOf(f *tltest.Fixture, name string) int64 {
	return f.Tree.Node(f.N(name)).ID
}

func TestFirstIterationWithoutLabels(t *testing.T) {
	f := shop(t)
	d, seen := newTestDriver(t, Options{Allowed: []string{"A", "B"}})

	res, err := d.Run(f.Tree, nil, 0)
	require.NoError(t, err)

	assert.False(t, res.Propagated)
	assert.False(t, res.Exhausted)
	assert.Equal(t, 1, res.Iteration)
	assert.Equal(t, 6, res.RequiringVerification)
	assert.Equal(t, 3, res.SampleSize, "three top-level branches outnumber two labels")
	assert.Len(t, res.Selected, 3)
	assert.NotEqual(t, [16]byte{}, [16]byte(res.RunID))
	for _, n := range res.Selected {
		assert.True(t, f.Tree.Node(n).Labels.Selected)
	}

	assert.Equal(t, Complete, d.State())
	assert.Equal(t, []transition{
		{AwaitingManualLabels, Extracting},
		{Extracting, Selecting},
		{Selecting, Complete},
	}, *seen)
}

func TestIterationWithLabels(t *testing.T) {
	f := shop(t)
	d, seen := newTestDriver(t, Options{Allowed: []string{"food", "home", "toys"}})

	res, err := d.Run(f.Tree, map[int64]string{
		idOf(f, "milk"): "food",
		idOf(f, "soap"): "home",
	}, 1)
	require.NoError(t, err)

	assert.True(t, res.Propagated)
	assert.Equal(t, 2, res.ManualLabels)
	assert.Equal(t, 2, res.Iteration)
	assert.Equal(t, tree.LabelSet{"food"}, f.Predicted("bread"))
	assert.Equal(t, tree.LabelSet{"home"}, f.Predicted("candle"))
	assert.Equal(t, tree.LabelSet{"food", "home"}, f.Predicted("ball"))
	assert.Equal(t, 1, res.RequiringVerification)
	assert.Equal(t, 1, res.SampleSize)
	assert.Equal(t, []string{"ball"}, f.Names(res.Selected))

	assert.Equal(t, []transition{
		{AwaitingManualLabels, Propagating},
		{Propagating, Extracting},
		{Extracting, Selecting},
		{Selecting, Complete},
	}, *seen)
}

func TestSingleBranchLabelResolvesTree(t *testing.T) {
	f := tltest.Build(t, tltest.Cat("root",
		tltest.Cat("A", tltest.Item("p1")),
		tltest.Cat("B", tltest.Item("p2"), tltest.Item("p3")),
	))
	d, seen := newTestDriver(t, Options{Allowed: []string{"X"}})

	res, err := d.Run(f.Tree, map[int64]string{idOf(f, "p2"): "X"}, 0)
	require.NoError(t, err)

	assert.True(t, res.Exhausted)
	assert.Empty(t, res.Selected)
	for _, name := range []string{"A", "p1", "B", "p3"} {
		assert.Equal(t, tree.LabelSet{"X"}, f.Predicted(name), name)
	}
	assert.Equal(t, transition{Extracting, Complete}, (*seen)[len(*seen)-1])
}

func TestSampleSizeOverride(t *testing.T) {
	f := shop(t)
	d, _ := newTestDriver(t, Options{Allowed: []string{"A"}, SampleSize: 5})

	res, err := d.Run(f.Tree, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, res.SampleSize)
	assert.Len(t, res.Selected, 5)

	f = shop(t)
	d, _ = newTestDriver(t, Options{Allowed: []string{"A"}, SampleSize: 100})
	res, err = d.Run(f.Tree, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, res.SampleSize, "clamped to the selectable items")
}

func TestSkippedItemsAreNotReselected(t *testing.T) {
	f := shop(t)
	d, _ := newTestDriver(t, Options{Allowed: []string{"A"}, SampleSize: 10})

	res, err := d.Run(f.Tree, map[int64]string{idOf(f, "ball"): tree.Skip}, 0)
	require.NoError(t, err)
	assert.False(t, res.Propagated, "skip carries no information")
	assert.Equal(t, 5, res.RequiringVerification)
	assert.NotContains(t, f.Names(res.Selected), "ball")
}

func TestRunRejectsBadLabels(t *testing.T) {
	tests := []struct {
		name   string
		manual func(f *tltest.Fixture) map[int64]string
		check  func(error) bool
	}{
		{
			name:   "unknown label",
			manual: func(f *tltest.Fixture) map[int64]string { return map[int64]string{idOf(f, "milk"): "Z"} },
			check:  errors.IsUnknownLabel,
		},
		{
			name:   "unknown item",
			manual: func(f *tltest.Fixture) map[int64]string { return map[int64]string{424242: "A"} },
			check:  errors.IsMalformedRecord,
		},
		{
			name:   "multiple labels",
			manual: func(f *tltest.Fixture) map[int64]string { return map[int64]string{idOf(f, "milk"): "A|B"} },
			check:  errors.IsInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := shop(t)
			d, _ := newTestDriver(t, Options{Allowed: []string{"A", "B"}})
			_, err := d.Run(f.Tree, tt.manual(f), 0)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
			assert.Equal(t, AwaitingManualLabels, d.State())
		})
	}
}

func TestRejectedLabelsLeaveTreeUntouched(t *testing.T) {
	f := shop(t)
	d, _ := newTestDriver(t, Options{Allowed: []string{"A"}})
	milk := idOf(f, "milk")

	// the good row sorts before the bad one
	_, err := d.Run(f.Tree, map[int64]string{milk: "A", 424242: "A"}, 0)
	require.Error(t, err)

	n, ok := f.Tree.ItemByID(milk)
	require.True(t, ok)
	assert.Empty(t, f.Tree.Node(n).Labels.Manual)
}

func TestRunAgainAfterComplete(t *testing.T) {
	d, _ := newTestDriver(t, Options{Allowed: []string{"A"}})

	_, err := d.Run(shop(t).Tree, nil, 0)
	require.NoError(t, err)
	res, err := d.Run(shop(t).Tree, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Iteration)
}

func TestStuckDriverNeedsReset(t *testing.T) {
	d, _ := newTestDriver(t, Options{Allowed: []string{"A"}})
	d.state = Selecting

	_, err := d.Run(shop(t).Tree, nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidState(err))
	assert.NotEmpty(t, errors.GetAllHints(err))

	d.Reset()
	_, err = d.Run(shop(t).Tree, nil, 0)
	assert.NoError(t, err)
}

func TestSelectorFailureLeavesDriverStuck(t *testing.T) {
	f := shop(t)
	d := NewDriver(failingSelector{}, Options{Allowed: []string{"A"}}, nil)

	_, err := d.Run(f.Tree, nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInsufficientLeaves(err))
	assert.Equal(t, Selecting, d.State())
}

type failingSelector struct{}

func (failingSelector) Name() string { return "failing" }

func (failingSelector) Select(*tree.View, int) ([]tree.NodeID, error) {
	return nil, errors.ErrInsufficientLeaves
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{AwaitingManualLabels, Propagating, true},
		{AwaitingManualLabels, Extracting, true},
		{AwaitingManualLabels, Selecting, false},
		{Propagating, Extracting, true},
		{Propagating, Complete, false},
		{Extracting, Selecting, true},
		{Extracting, Complete, true},
		{Selecting, Complete, true},
		{Selecting, Propagating, false},
		{Complete, AwaitingManualLabels, true},
		{Complete, Selecting, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			d := NewDriver(selector.NewTopDown(0), Options{}, nil)
			d.state = tt.from
			err := d.transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, d.State())
			} else {
				assert.True(t, errors.IsInvalidState(err))
				assert.Equal(t, tt.from, d.State())
			}
		})
	}
	assert.True(t, IsTerminal(Complete))
	assert.False(t, IsTerminal(Selecting))
}
