package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/progress"
	"github.com/teranos/treelabel/task"
)

// StatsCmd shows the progress table of a task
var StatsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Show the progress of a task",
	Long: `Show one row per iteration from the task's all-stats.jsonl.

With --json, prints every recorded statistics document.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	tk, err := task.Open(args[0], logger.Logger)
	if err != nil {
		return err
	}
	records, err := progress.NewTracker(tk.Dir, tk.Config.StartTime, logger.Logger).Records()
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		if records == nil {
			records = []progress.Record{}
		}
		return display.OutputJSON(cmd.OutOrStdout(), records)
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No iteration yet. Run: treelabel label %s\n", args[0])
		return nil
	}
	return display.RenderTable(cmd.OutOrStdout(), display.ProgressTable(records))
}
