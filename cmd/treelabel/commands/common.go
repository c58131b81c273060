// Package commands implements the treelabel subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/am"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/runner"
	"github.com/teranos/treelabel/selector"
)

// LogOptions applies the configured console theme and reports whether logs
// should be written as JSON: --json-logs when given, log.json otherwise.
// An invalid configuration is left for the commands that need it to report,
// so that `am set` can still repair it.
func LogOptions(cmd *cobra.Command) (jsonLogs bool) {
	jsonLogs, _ = cmd.Flags().GetBool("json-logs")
	cfg, err := am.Load()
	if err != nil {
		return jsonLogs
	}
	logger.SetTheme(cfg.GetLogTheme())
	if f := cmd.Flags().Lookup("json-logs"); f != nil && f.Changed {
		return jsonLogs
	}
	return cfg.Log.JSON
}

// addIterationFlags registers the flags shared by label and watch.
func addIterationFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("sample", "n", 0, "Number of products to select (default: derived from labels and tree)")
	cmd.Flags().String("selector", "", "Selection strategy: top-down, weighted, farthest-leaves")
	cmd.Flags().Uint64("seed", 0, "Random seed for the selector (default: random)")
}

// runnerOptions merges the configuration with the flags given on cmd.
func runnerOptions(cmd *cobra.Command, cfg *am.Config) runner.Options {
	opts := runner.Options{
		Selector:   cfg.Label.Selector,
		SampleSize: cfg.Label.SampleSize,
		Seed:       cfg.Label.Seed,
		Weight:     selector.DefaultDepthWeight,
	}
	// 0 keeps the default
	if cfg.Label.DepthWeightScale > 0 {
		opts.Weight.Scale = cfg.Label.DepthWeightScale
	}
	if cfg.Label.DepthWeightExponent > 0 {
		opts.Weight.Exponent = cfg.Label.DepthWeightExponent
	}
	if cmd.Flags().Changed("sample") {
		opts.SampleSize, _ = cmd.Flags().GetInt("sample")
	}
	if cmd.Flags().Changed("selector") {
		opts.Selector, _ = cmd.Flags().GetString("selector")
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	return opts
}
