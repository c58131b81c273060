package labelling

import (
	"github.com/teranos/treelabel/errors"
)

// State is the phase of a labelling iteration.
type State int

const (
	AwaitingManualLabels State = iota
	Propagating
	Extracting
	Selecting
	Complete
)

func (s State) String() string {
	switch s {
	case AwaitingManualLabels:
		return "awaiting-manual-labels"
	case Propagating:
		return "propagating"
	case Extracting:
		return "extracting"
	case Selecting:
		return "selecting"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether an iteration in state s has finished.
func IsTerminal(s State) bool { return s == Complete }

func isAllowedTransition(from, to State) bool {
	switch from {
	case AwaitingManualLabels:
		// Propagation is skipped when no informative manual label exists.
		return to == Propagating || to == Extracting
	case Propagating:
		return to == Extracting
	case Extracting:
		// Nothing left to verify finishes the task.
		return to == Selecting || to == Complete
	case Selecting:
		return to == Complete
	case Complete:
		return to == AwaitingManualLabels
	default:
		return false
	}
}

// transition moves the driver from its current state to to.
func (d *Driver) transition(to State) error {
	from := d.state
	if !isAllowedTransition(from, to) {
		return errors.NewInvalidStatef("disallowed transition %s -> %s", from, to)
	}
	d.state = to
	d.logger.Debugw("Labelling state changed", "from", from.String(), "to", to.String())
	if d.observer != nil {
		d.observer(from, to)
	}
	return nil
}
