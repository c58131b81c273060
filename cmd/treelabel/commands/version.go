package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/task"
	"github.com/teranos/treelabel/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show treelabel version information",
	Long:  `Display version, commit, build time and platform of the treelabel binary, and the task directory format it reads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cmd.OutOrStdout(), struct {
				version.Info
				TaskFormat string `json:"task_format"`
			}{info, task.FormatVersion})
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s\n", info.Platform)
		fmt.Fprintf(cmd.OutOrStdout(), "Go: %s\n", info.GoVersion)
		fmt.Fprintf(cmd.OutOrStdout(), "Task format: %s\n", task.FormatVersion)
		return nil
	},
}
