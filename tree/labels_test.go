package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLabelSet(t *testing.T) {
	assert.Equal(t, LabelSet{"A", "B", "C"}, NewLabelSet("C", "A", "B", "A", ""))
	assert.Equal(t, LabelSet{}, NewLabelSet())
}

func TestParseLabelSet(t *testing.T) {
	tests := []struct {
		in   string
		want LabelSet
	}{
		{"", LabelSet{}},
		{"  ", LabelSet{}},
		{"A", LabelSet{"A"}},
		{"B|A", LabelSet{"A", "B"}},
		{"A | B |A", LabelSet{"A", "B"}},
		{"!", LabelSet{"!"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabelSet(tt.in))
		})
	}
}

func TestLabelSetOperations(t *testing.T) {
	s := NewLabelSet("B")
	s2 := s.With("A")

	assert.Equal(t, LabelSet{"B"}, s, "With must not modify the receiver")
	assert.Equal(t, LabelSet{"A", "B"}, s2)
	assert.True(t, s2.Contains("A"))
	assert.False(t, s2.Contains("C"))
	assert.Equal(t, "A|B", s2.String())
	assert.Equal(t, LabelSet{"A", "B", "C"}, s2.Union(LabelSet{"C", "A"}))

	label, ok := s.Single()
	assert.True(t, ok)
	assert.Equal(t, "B", label)
	_, ok = s2.Single()
	assert.False(t, ok)

	assert.Negative(t, LabelSet{"A"}.Compare(LabelSet{"B"}))
	assert.Nil(t, LabelSet(nil).Clone())
}

func TestLabelPredicates(t *testing.T) {
	tests := []struct {
		name      string
		labels    Labels
		good      bool
		missing   bool
		ambiguous bool
		inferred  bool
		reject    bool
		skip      bool
		toVerify  LabelSet
	}{
		{
			name:     "never propagated",
			labels:   Labels{},
			missing:  true,
			toVerify: LabelSet{},
		},
		{
			name:     "manual only",
			labels:   Labels{Manual: "A"},
			missing:  true,
			toVerify: LabelSet{"A"},
		},
		{
			name:     "manual and predicted",
			labels:   Labels{Manual: "A", Predicted: LabelSet{"A"}},
			good:     true,
			toVerify: LabelSet{"A"},
		},
		{
			name:     "inferred",
			labels:   Labels{Predicted: LabelSet{"A"}},
			good:     true,
			inferred: true,
			toVerify: LabelSet{"A"},
		},
		{
			name:      "ambiguous",
			labels:    Labels{Predicted: LabelSet{"A", "B"}},
			ambiguous: true,
			toVerify:  LabelSet{"A", "B"},
		},
		{
			name:     "reject",
			labels:   Labels{Manual: Reject, Predicted: LabelSet{Reject}},
			good:     true,
			reject:   true,
			toVerify: LabelSet{Reject},
		},
		{
			name:     "skip",
			labels:   Labels{Manual: Skip},
			missing:  true,
			skip:     true,
			toVerify: LabelSet{Skip},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.good, tt.labels.IsGood())
			assert.Equal(t, tt.missing, tt.labels.IsMissing())
			assert.Equal(t, tt.ambiguous, tt.labels.IsAmbiguous())
			assert.Equal(t, !tt.good, tt.labels.RequiresVerification())
			assert.Equal(t, tt.inferred, tt.labels.IsInferred())
			assert.Equal(t, tt.reject, tt.labels.ToReject())
			assert.Equal(t, tt.skip, tt.labels.ToSkip())
			assert.Equal(t, tt.toVerify, tt.labels.ToVerify())
		})
	}
}
