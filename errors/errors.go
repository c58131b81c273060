// Package errors provides error handling for treelabel.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// Usage:
//
//	// Wrap a domain sentinel with context
//	return errors.Wrapf(errors.ErrUnknownLabel, "item %d: %q", id, label)
//
//	// Add hints for users
//	return errors.WithHint(err, "add the label to allowed_labels in config.yaml")
//
//	// Check errors
//	if errors.IsUnknownLabel(err) {
//	    // report the offending row
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
	CombineErrors      = crdb.CombineErrors
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Labelling engine sentinels. Wrap them with Wrap/Wrapf to add context
// while keeping them matchable with Is.
var (
	// ErrInvalidState indicates an operation was attempted on a tree or
	// driver in a state that does not allow it.
	ErrInvalidState = New("invalid state")

	// ErrUnknownLabel indicates a label outside the task alphabet.
	ErrUnknownLabel = New("unknown label")

	// ErrInsufficientLeaves indicates a selector was asked for more leaves
	// than the view holds.
	ErrInsufficientLeaves = New("insufficient leaves")

	// ErrMalformedRecord indicates an unparseable tree or labels record.
	ErrMalformedRecord = New("malformed record")

	// ErrNotFound indicates a missing task artifact or history entry.
	ErrNotFound = New("not found")
)

// IsInvalidState checks if an error is or wraps ErrInvalidState
func IsInvalidState(err error) bool {
	return err != nil && Is(err, ErrInvalidState)
}

// IsUnknownLabel checks if an error is or wraps ErrUnknownLabel
func IsUnknownLabel(err error) bool {
	return err != nil && Is(err, ErrUnknownLabel)
}

// IsInsufficientLeaves checks if an error is or wraps ErrInsufficientLeaves
func IsInsufficientLeaves(err error) bool {
	return err != nil && Is(err, ErrInsufficientLeaves)
}

// IsMalformedRecord checks if an error is or wraps ErrMalformedRecord
func IsMalformedRecord(err error) bool {
	return err != nil && Is(err, ErrMalformedRecord)
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewMalformedRecordf creates a malformed-record error with a formatted message
func NewMalformedRecordf(format string, args ...interface{}) error {
	return Wrapf(ErrMalformedRecord, format, args...)
}

// NewInvalidStatef creates an invalid-state error with a formatted message
func NewInvalidStatef(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidState, format, args...)
}
