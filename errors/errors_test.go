package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatchers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matcher func(error) bool
	}{
		{"invalid state", Wrap(ErrInvalidState, "tree already propagated"), IsInvalidState},
		{"unknown label", Wrapf(ErrUnknownLabel, "item %d: %q", 7, "Z"), IsUnknownLabel},
		{"insufficient leaves", Wrapf(ErrInsufficientLeaves, "want %d, have %d", 5, 2), IsInsufficientLeaves},
		{"malformed record", NewMalformedRecordf("line %d: missing id", 3), IsMalformedRecord},
		{"not found", Wrap(ErrNotFound, "config.yaml"), IsNotFound},
		{"constructed invalid state", NewInvalidStatef("cannot go from %s", "Complete"), IsInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.matcher(tt.err))
			assert.False(t, tt.matcher(nil))
			assert.False(t, tt.matcher(New("unrelated")))
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	err := Wrap(ErrUnknownLabel, "row 4")
	assert.False(t, IsInvalidState(err))
	assert.False(t, IsMalformedRecord(err))
	assert.False(t, IsInsufficientLeaves(err))
}

func TestWrapKeepsMessage(t *testing.T) {
	err := Wrapf(ErrMalformedRecord, "line %d", 12)
	assert.Equal(t, "line 12: malformed record", err.Error())
}

func TestWithHint(t *testing.T) {
	err := WithHint(Wrap(ErrUnknownLabel, "label X"), "add X to allowed_labels")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "add X to allowed_labels", hints[0])
	assert.True(t, IsUnknownLabel(err))
}

func TestWithDetail(t *testing.T) {
	err := WithDetail(New("error"), "detailed information")

	details := GetAllDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "detailed information", details[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WithDetail(nil, "detail"))
}

func TestCombineErrors(t *testing.T) {
	first := New("first")
	combined := CombineErrors(first, New("second"))
	assert.True(t, Is(combined, first))
	assert.Equal(t, first, CombineErrors(first, nil))
}

func ExampleWrapf() {
	err := Wrapf(ErrUnknownLabel, "item %d", 42)
	fmt.Println(err)
	// Output: item 42: unknown label
}

func ExampleWithHint() {
	err := WithHint(ErrInsufficientLeaves, "lower --sample")
	fmt.Println(GetAllHints(err)[0])
	// Output: lower --sample
}
