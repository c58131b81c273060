package tree

import (
	"slices"
	"strings"
)

// Reserved labels that are always part of a task alphabet.
const (
	// Reject marks an item that must be excluded from the training data.
	Reject = "!"
	// Skip marks an item the annotator could not decide on. It carries no
	// information and is excluded from propagation.
	Skip = "?"
)

// Separator joins the members of a LabelSet in serialized form.
const Separator = "|"

// LabelSet is an immutable, sorted set of labels. A nil LabelSet means the
// node was never propagated.
type LabelSet []string

// NewLabelSet builds a sorted set from labels, dropping duplicates and empty
// strings.
func NewLabelSet(labels ...string) LabelSet {
	out := make(LabelSet, 0, len(labels))
	for _, l := range labels {
		if l != "" {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseLabelSet splits a "|" joined label list.
func ParseLabelSet(s string) LabelSet {
	s = strings.TrimSpace(s)
	if s == "" {
		return LabelSet{}
	}
	parts := strings.Split(s, Separator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return NewLabelSet(parts...)
}

// Len returns the number of labels in the set.
func (s LabelSet) Len() int { return len(s) }

// Contains reports whether label is a member of s.
func (s LabelSet) Contains(label string) bool {
	_, ok := slices.BinarySearch(s, label)
	return ok
}

// With returns a new set holding s and label.
func (s LabelSet) With(label string) LabelSet {
	i, ok := slices.BinarySearch(s, label)
	if ok {
		return s
	}
	out := make(LabelSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, label)
	return append(out, s[i:]...)
}

// Union returns a new set holding the members of both sets.
func (s LabelSet) Union(other LabelSet) LabelSet {
	merged := make([]string, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewLabelSet(merged...)
}

// Single returns the only member of a singleton set.
func (s LabelSet) Single() (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	return s[0], true
}

// Clone returns a copy that does not share storage with s.
func (s LabelSet) Clone() LabelSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Equal reports whether both sets hold the same labels.
func (s LabelSet) Equal(other LabelSet) bool { return slices.Equal(s, other) }

// Compare orders sets by their sorted member lists.
func (s LabelSet) Compare(other LabelSet) int { return slices.Compare(s, other) }

func (s LabelSet) String() string { return strings.Join(s, Separator) }

// Labels is the per-node label state.
type Labels struct {
	// Manual is the label the annotator gave the item, "" when unset.
	Manual string
	// Predicted is the color set computed by propagation, nil before it.
	Predicted LabelSet
	// Selected is set once the item has been chosen for verification.
	Selected bool
}

// IsGood reports a resolved node: exactly one predicted label.
func (l Labels) IsGood() bool { return len(l.Predicted) == 1 }

// IsMissing reports a node without any predicted label.
func (l Labels) IsMissing() bool { return len(l.Predicted) == 0 }

// IsAmbiguous reports a node with more than one candidate label.
func (l Labels) IsAmbiguous() bool { return len(l.Predicted) > 1 }

// RequiresVerification reports nodes that are missing or ambiguous.
func (l Labels) RequiresVerification() bool { return !l.IsGood() }

// GoodLabel returns the resolved label of a good node.
func (l Labels) GoodLabel() (string, bool) { return l.Predicted.Single() }

// IsInferred reports a good node that was resolved without a manual label.
func (l Labels) IsInferred() bool { return l.IsGood() && l.Manual == "" }

// ToReject reports a node resolved to the reject label.
func (l Labels) ToReject() bool {
	label, ok := l.GoodLabel()
	return ok && label == Reject
}

// ToSkip reports an item the annotator deferred.
func (l Labels) ToSkip() bool { return l.Manual == Skip }

// ToVerify returns the candidates shown to the annotator: the predicted set,
// or the manual label when nothing was predicted.
func (l Labels) ToVerify() LabelSet {
	if len(l.Predicted) > 0 {
		return l.Predicted
	}
	if l.Manual != "" {
		return LabelSet{l.Manual}
	}
	return LabelSet{}
}
