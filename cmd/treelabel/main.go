package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/cmd/treelabel/commands"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
)

var rootCmd = &cobra.Command{
	Use:   "treelabel",
	Short: "treelabel - label a product tree with as few manual labels as possible",
	Long: `treelabel - iterative labelling of large product trees.

An annotator labels a small sample of products, treelabel propagates those
labels through the category tree and picks the next sample among the
products whose label is still unknown or ambiguous.

Available commands:
  init     - Create a labelling task from a YAML tree
  label    - Run one iteration on the latest to-verify sheet
  watch    - Run an iteration whenever the to-verify sheet is saved
  stats    - Show the progress of a task
  history  - Show the iterations recorded for a task
  export   - Write the pruned tree as YAML
  am       - Manage treelabel configuration ("I am")
  version  - Show version information

Examples:
  treelabel init shop --tree products.yaml --labels "food home 'garden tools'"
  treelabel label shop                  # Select products to verify
  treelabel watch shop                  # Keep labelling while you edit
  treelabel stats shop --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(commands.LogOptions(cmd), verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs to stderr as JSON (default: log.json setting)")

	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.LabelCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.StatsCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hints := errors.FlattenHints(err); hints != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hints)
		}
		os.Exit(1)
	}
}
