package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/catalog"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/task"
)

// ExportCmd writes the pruned tree of a task
var ExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the pruned tree as YAML",
	Long: `Write the task's tree without empty categories, in the same YAML shape
init accepts. Writes to stdout unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	ExportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	tk, err := task.Open(args[0], logger.Logger)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return catalog.Export(cmd.OutOrStdout(), tk.Tree)
	}
	if err := catalog.ExportFile(out, tk.Tree); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %d products to %s\n", tk.Tree.CountItems(), out)
	return nil
}
