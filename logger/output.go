package logger

// OutputCategory defines a category of command output that can be enabled
// per verbosity level. Unlike log levels, categories decide WHAT is printed
// by commands (tables, guidance), independent of log severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults   OutputCategory = iota // Written files, selected items
	OutputErrors                          // Errors with hints
	OutputNextSteps                       // Guidance on what to do next
	OutputProgress                        // Progress table after each iteration

	// Level 1 (-v)
	OutputCoverage // Per-label coverage tables

	// Level 2 (-vv)
	OutputConfig // Effective configuration
	OutputTiming // Phase timings

	// Level 3 (-vvv)
	OutputDataDump // Full statistics documents
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:   VerbosityUser,
	OutputErrors:    VerbosityUser,
	OutputNextSteps: VerbosityUser,
	OutputProgress:  VerbosityUser,
	OutputCoverage:  VerbosityInfo,
	OutputConfig:    VerbosityDebug,
	OutputTiming:    VerbosityDebug,
	OutputDataDump:  VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:   "results",
	OutputErrors:    "errors",
	OutputNextSteps: "next-steps",
	OutputProgress:  "progress",
	OutputCoverage:  "coverage",
	OutputConfig:    "config",
	OutputTiming:    "timing",
	OutputDataDump:  "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
