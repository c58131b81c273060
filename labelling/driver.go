// Package labelling runs one labelling iteration over a tree: apply the
// annotator's labels, propagate them, find what is still unresolved, and
// choose the items to show next.
package labelling

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/treelabel/coloring"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/selector"
	"github.com/teranos/treelabel/tree"
)

// Options configures a Driver.
type Options struct {
	// Allowed is the task alphabet without the reserved labels.
	Allowed []string
	// SampleSize overrides the per-iteration sample size when positive.
	SampleSize int
}

// Result describes a finished iteration.
type Result struct {
	RunID      uuid.UUID
	Iteration  int
	StartedAt  time.Time
	FinishedAt time.Time

	// ManualLabels counts the labels merged into the tree.
	ManualLabels int
	// Propagated is false when no informative manual label existed.
	Propagated bool
	// RequiringVerification counts the selectable items left unresolved.
	// Items deferred with the skip label are not among them.
	RequiringVerification int
	// Exhausted is set when no item needs verification any more.
	Exhausted  bool
	SampleSize int
	Selected   []tree.NodeID
}

// Observer is notified of every state transition.
type Observer func(from, to State)

// Driver sequences a labelling iteration.
type Driver struct {
	selector selector.Selector
	opts     Options
	alphabet map[string]bool
	logger   *zap.SugaredLogger
	state    State
	observer Observer
	now      func() time.Time
}

// NewDriver returns a driver in the AwaitingManualLabels state. A nil logger
// keeps it silent.
func NewDriver(sel selector.Selector, opts Options, log *zap.SugaredLogger) *Driver {
	alphabet := map[string]bool{tree.Reject: true, tree.Skip: true}
	for _, l := range opts.Allowed {
		alphabet[l] = true
	}
	return &Driver{
		selector: sel,
		opts:     opts,
		alphabet: alphabet,
		logger:   logger.OrNop(log),
		state:    AwaitingManualLabels,
		now:      time.Now,
	}
}

// OnTransition registers an observer for state transitions.
func (d *Driver) OnTransition(o Observer) { d.observer = o }

// State returns the current state.
func (d *Driver) State() State { return d.state }

// Reset returns a driver stuck after a failed run to AwaitingManualLabels.
func (d *Driver) Reset() { d.state = AwaitingManualLabels }

// Run executes one iteration on t. Manual maps item ids to the annotator's
// labels; iteration is the number of the iteration that produced them.
func (d *Driver) Run(t *tree.Tree, manual map[int64]string, iteration int) (*Result, error) {
	if d.state == Complete {
		if err := d.transition(AwaitingManualLabels); err != nil {
			return nil, err
		}
	}
	if d.state != AwaitingManualLabels {
		return nil, errors.WithHint(
			errors.NewInvalidStatef("cannot start an iteration while %s", d.state),
			"call Reset after a failed run")
	}

	res := &Result{RunID: uuid.New(), StartedAt: d.now(), Iteration: iteration}
	log := d.logger.With(logger.FieldRunID, res.RunID.String(), logger.FieldIteration, iteration)

	applied, err := d.merge(t, manual)
	if err != nil {
		return nil, err
	}
	res.ManualLabels = applied

	if hasInformativeLabel(t) {
		if err := d.transition(Propagating); err != nil {
			return nil, err
		}
		if err := coloring.Propagate(t); err != nil {
			return nil, errors.Wrap(err, "propagate labels")
		}
		res.Propagated = true
	} else {
		log.Infow("No informative manual labels, skipping propagation")
	}

	if err := d.transition(Extracting); err != nil {
		return nil, err
	}
	view := coloring.RequiringVerification(t)
	leaves := view.Selectable()
	res.RequiringVerification = len(leaves)

	if len(leaves) == 0 {
		res.Exhausted = true
		res.Iteration = iteration + 1
		res.FinishedAt = d.now()
		if err := d.transition(Complete); err != nil {
			return nil, err
		}
		log.Infow("Nothing left to verify")
		return res, nil
	}

	if err := d.transition(Selecting); err != nil {
		return nil, err
	}
	res.SampleSize = min(d.sampleSize(view), len(leaves))
	selected, err := d.selector.Select(view, res.SampleSize)
	if err != nil {
		return nil, errors.Wrapf(err, "select with %s", d.selector.Name())
	}
	for _, n := range selected {
		t.MarkSelected(n)
	}
	res.Selected = selected
	res.Iteration = iteration + 1
	res.FinishedAt = d.now()

	if err := d.transition(Complete); err != nil {
		return nil, err
	}
	log.Infow("Iteration complete",
		logger.FieldSelector, d.selector.Name(),
		logger.FieldSampleSize, res.SampleSize,
		logger.FieldCount, len(selected),
		"requiring_verification", res.RequiringVerification,
	)
	return res, nil
}

// sampleSize returns the number of items requested from the selector for
// view before clamping: the configured override, or the larger of the
// alphabet size and the number of branches below the ambiguous root.
func (d *Driver) sampleSize(view *tree.View) int {
	if d.opts.SampleSize > 0 {
		return d.opts.SampleSize
	}
	branches := 0
	for _, r := range view.Roots() {
		branches += len(view.Children(r))
	}
	return max(len(d.opts.Allowed), branches)
}

// merge applies manual labels to t. Every row is checked before the first
// label is set, so a rejected batch leaves t untouched. Rows are checked in
// item id order so that the first bad row is reported deterministically.
func (d *Driver) merge(t *tree.Tree, manual map[int64]string) (int, error) {
	ids := make([]int64, 0, len(manual))
	for id := range manual {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	type row struct {
		node  tree.NodeID
		label string
	}
	rows := make([]row, 0, len(ids))
	for _, id := range ids {
		label := strings.TrimSpace(manual[id])
		if label == "" {
			continue
		}
		if strings.Contains(label, tree.Separator) {
			return 0, errors.NewInvalidStatef("item %d carries more than one manual label: %q", id, label)
		}
		if !d.alphabet[label] {
			return 0, errors.WithHintf(
				errors.Wrapf(errors.ErrUnknownLabel, "item %d: %q", id, label),
				"allowed labels are %v plus %q and %q", d.opts.Allowed, tree.Reject, tree.Skip)
		}
		n, ok := t.ItemByID(id)
		if !ok {
			return 0, errors.NewMalformedRecordf("labelled item %d is not part of the tree", id)
		}
		rows = append(rows, row{n, label})
	}

	for _, r := range rows {
		if err := t.SetManual(r.node, r.label); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func hasInformativeLabel(t *tree.Tree) bool {
	for _, n := range t.Items() {
		if m := t.Node(n).Labels.Manual; m != "" && m != tree.Skip {
			return true
		}
	}
	return false
}
