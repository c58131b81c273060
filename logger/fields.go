package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across treelabel.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldIteration = "iteration"
	FieldTaskDir   = "task_dir"

	// Components
	FieldComponent = "component"
	FieldSelector  = "selector"

	// Operations
	FieldOperation = "operation"
	FieldState     = "state"
	FieldPath      = "path"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount      = "count"
	FieldSampleSize = "sample_size"
	FieldTotalCount = "total_count"

	// Domain
	FieldItemID = "item_id"
	FieldLabel  = "label"
	FieldLine   = "line"
)

// Context keys for propagating logging context
type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	taskDirKey   contextKey = "logger_task_dir"
	componentKey contextKey = "logger_component"
)

// WithRunID adds an iteration run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithTaskDir adds the task directory to the context for logging
func WithTaskDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, taskDirKey, dir)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if dir, ok := ctx.Value(taskDirKey).(string); ok && dir != "" {
		fields = append(fields, FieldTaskDir, dir)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	driver := labelling.NewDriver(sel, opts, logger.ComponentLogger("labelling"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	runLogger := logger.ChildLogger(base, logger.FieldRunID, result.RunID)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
