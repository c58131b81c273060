package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantLevel  zapcore.Level
	}{
		{"JSON output mode", true, VerbosityUser, zapcore.WarnLevel},
		{"Console output mode", false, VerbosityUser, zapcore.WarnLevel},
		{"Console with -v", false, VerbosityInfo, zapcore.InfoLevel},
		{"JSON with -vv", true, VerbosityDebug, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false
			defer func() { Logger = zap.NewNop().Sugar() }()

			if err := Initialize(tt.jsonOutput, tt.verbosity); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if Logger == nil {
				t.Fatal("Initialize() did not set global Logger")
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("Initialize() JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}
			if !Logger.Desugar().Core().Enabled(tt.wantLevel) {
				t.Errorf("level %v should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && Logger.Desugar().Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %v should be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
	if got := LevelName(7); got != "Trace (-vvv+)" {
		t.Errorf("LevelName(7) = %q", got)
	}
}

func TestShouldOutput(t *testing.T) {
	if !ShouldOutput(VerbosityUser, OutputResults) {
		t.Error("results must always be shown")
	}
	if !ShouldOutput(VerbosityUser, OutputProgress) {
		t.Error("progress table is always shown")
	}
	if ShouldOutput(VerbosityUser, OutputCoverage) {
		t.Error("coverage tables need -v")
	}
	if !ShouldOutput(VerbosityInfo, OutputCoverage) {
		t.Error("coverage tables are shown at -v")
	}
	if ShouldOutput(VerbosityDebug, OutputCategory(99)) {
		t.Error("unknown categories need trace verbosity")
	}
	if CategoryName(OutputNextSteps) != "next-steps" {
		t.Errorf("CategoryName = %q", CategoryName(OutputNextSteps))
	}
}

func TestCleanupWithNilLogger(t *testing.T) {
	Logger = nil
	defer func() { Logger = zap.NewNop().Sugar() }()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Cleanup() panicked unexpectedly: %v", r)
		}
	}()
	Cleanup()
	Infow("test", "key", "value")
	Warnw("test", "key", "value")
	Errorw("test", "key", "value")
	Debugw("test", "key", "value")
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := zap.NewExample().Sugar()
	if OrNop(l) != l {
		t.Error("OrNop must return a non-nil logger unchanged")
	}
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()
	defer func() { Logger = zap.NewNop().Sugar() }()

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithTaskDir(ctx, "/tmp/task")
	ctx = WithComponent(ctx, "watch")

	LoggerFromContext(ctx).Infow("Iteration complete", FieldIteration, 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	for key, want := range map[string]interface{}{
		FieldRunID:     "run-1",
		FieldTaskDir:   "/tmp/task",
		FieldComponent: "watch",
		FieldIteration: int64(2),
	} {
		if fields[key] != want {
			t.Errorf("field %s = %v, want %v", key, fields[key], want)
		}
	}

	if got := LoggerFromContext(context.Background()); got != Logger {
		t.Error("empty context should return the global logger")
	}
}
