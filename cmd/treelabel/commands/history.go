package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/db"
	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/history"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/task"
)

// HistoryCmd lists the recorded iterations of a task
var HistoryCmd = &cobra.Command{
	Use:   "history <dir>",
	Short: "Show the iterations recorded for a task",
	Long: `Show the iteration ledger kept in the task's history.db.

With --item, shows the manual labels one product received instead.

Examples:
  treelabel history shop
  treelabel history shop --item 1042 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	HistoryCmd.Flags().Int64("item", 0, "Show the manual labels of one product id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	tk, err := task.Open(args[0], logger.Logger)
	if err != nil {
		return err
	}
	conn, err := db.OpenWithMigrations(tk.HistoryPath(), logger.Logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	store := history.NewStore(conn)
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("item") {
		id, _ := cmd.Flags().GetInt64("item")
		if _, ok := tk.Tree.ItemByID(id); !ok {
			return errors.Wrapf(errors.ErrNotFound, "product %d", id)
		}
		changes, err := store.LabelHistory(cmd.Context(), id)
		if err != nil {
			return err
		}
		if display.ShouldOutputJSON(cmd) {
			if changes == nil {
				changes = []history.LabelChange{}
			}
			return display.OutputJSON(out, changes)
		}
		data := [][]string{{"Iteration", "Label", "At"}}
		for _, c := range changes {
			data = append(data, []string{strconv.Itoa(c.Iteration), c.Label, c.At.Local().Format("2006-01-02 15:04:05")})
		}
		return display.RenderTable(out, data)
	}

	entries, err := store.ListIterations(cmd.Context())
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		if entries == nil {
			entries = []history.Entry{}
		}
		return display.OutputJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No iteration recorded yet. Run: treelabel label %s\n", args[0])
		return nil
	}
	return display.RenderTable(out, display.HistoryTable(entries))
}
