package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/am"
	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/runner"
	"github.com/teranos/treelabel/tree"
)

// LabelCmd runs one labelling iteration
var LabelCmd = &cobra.Command{
	Use:   "label <dir>",
	Short: "Run one iteration on the latest to-verify sheet",
	Long: `Read the labels of the latest to-verify sheet, propagate them through the
tree and select the next products to verify.

Writes <n>-to-verify.tsv (products to review), <n>-good-labels.tsv (products
whose label is settled) and <n>-stats.json into the task directory.

Examples:
  treelabel label shop
  treelabel label shop --sample 50 --selector weighted --seed 7
  treelabel label shop --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

func init() {
	addIterationFlags(LabelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return err
	}
	rep, err := runner.New(runnerOptions(cmd, cfg), logger.Logger).Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), rep)
	}
	return printReport(cmd, rep)
}

// printReport prints what an iteration produced, more of it with each -v.
func printReport(cmd *cobra.Command, rep *runner.Report) error {
	w := cmd.OutOrStdout()
	verbosity, _ := cmd.Flags().GetCount("verbose")

	if logger.ShouldOutput(verbosity, logger.OutputConfig) {
		fmt.Fprintf(w, "Iteration %d: selector %s, seed %d, sample %d (run %s)\n",
			rep.Iteration, rep.Selector, rep.Seed, rep.SampleSize, rep.RunID)
	}

	if logger.ShouldOutput(verbosity, logger.OutputProgress) {
		fmt.Fprintln(w, "\nHere is the labelling progress made so far:")
		if err := display.RenderTable(w, display.ProgressTable(rep.History)); err != nil {
			return err
		}
	}

	if logger.ShouldOutput(verbosity, logger.OutputCoverage) {
		fmt.Fprintln(w, "\nHere is how many products you labelled with each label so far:")
		if err := display.RenderTable(w, display.ManualCoverageTable(rep.Stats)); err != nil {
			return err
		}
		fmt.Fprintln(w, "\nHere is how many products are predicted for each label so far (good vs. ambiguous):")
		if err := display.RenderTable(w, display.PredictedCoverageTable(rep.Stats)); err != nil {
			return err
		}
	}

	if logger.ShouldOutput(verbosity, logger.OutputDataDump) {
		fmt.Fprintln(w)
		if err := display.OutputJSON(w, rep.Stats); err != nil {
			return err
		}
	}

	if !logger.ShouldOutput(verbosity, logger.OutputNextSteps) {
		return nil
	}

	p := rep.Stats.PredictedLabels
	if rep.ResolvedPath != "" {
		fmt.Fprintf(w, "\n%s %d product labels are settled in %s.\n",
			pterm.Green("✓"), p.NGoodLabels, rep.ResolvedPath)
		fmt.Fprintf(w, "You can use them for training a classifier (skip the products labelled %s).\n", tree.Reject)
	}

	if rep.ToVerifyPath == "" {
		fmt.Fprintf(w, "\n%s Nothing left to verify after iteration %d.\n", pterm.Green("✓"), rep.Iteration)
		return nil
	}
	fmt.Fprintf(w, "\nSelected %d out of %d product labels to verify.\n", p.NSelected, p.NRequiresVerification)
	fmt.Fprintf(w, "Please review them in %s and run label again.\n\n", pterm.LightCyan(rep.ToVerifyPath))
	fmt.Fprintf(w, "Products you are unsure about can be marked %s.\n", tree.Skip)
	fmt.Fprintf(w, "Products that do not belong to this task can be marked %s.\n", tree.Reject)
	return nil
}
