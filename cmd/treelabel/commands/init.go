package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/task"
)

// InitCmd creates a labelling task
var InitCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a labelling task from a YAML tree",
	Long: `Create a labelling task in a new directory.

The tree is copied into the task. Labels are given either inline, split like
a shell command line, or one per line in a file (blank lines and lines
starting with # are ignored).

Examples:
  treelabel init shop --tree products.yaml --labels "food home 'garden tools'"
  treelabel init shop --tree products.yaml --labels-file departments.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	InitCmd.Flags().String("tree", "", "Path to the YAML product tree")
	InitCmd.Flags().String("labels", "", "Allowed labels, shell-quoted")
	InitCmd.Flags().String("labels-file", "", "File with one allowed label per line")
	_ = InitCmd.MarkFlagRequired("tree")
	InitCmd.MarkFlagsMutuallyExclusive("labels", "labels-file")
	InitCmd.MarkFlagsOneRequired("labels", "labels-file")
}

func runInit(cmd *cobra.Command, args []string) error {
	treePath, _ := cmd.Flags().GetString("tree")
	inline, _ := cmd.Flags().GetString("labels")
	file, _ := cmd.Flags().GetString("labels-file")

	var allowed []string
	var err error
	if file != "" {
		allowed, err = readLabelsFile(file)
	} else {
		allowed, err = splitLabels(inline)
	}
	if err != nil {
		return err
	}

	tk, err := task.Initialize(args[0], treePath, allowed, logger.Logger)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), tk.Config)
	}
	pterm.Success.Printf("Created task in %s\n", tk.Dir)
	pterm.Info.Printf("%d products, %d labels: %s\n",
		tk.Tree.CountItems(), len(allowed), strings.Join(allowed, ", "))
	fmt.Fprintf(cmd.OutOrStdout(), "\nNext: treelabel label %s\n", args[0])
	return nil
}

// splitLabels splits an inline label list the way a shell would.
func splitLabels(s string) ([]string, error) {
	labels, err := shellquote.Split(s)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "parse --labels %q", s),
			`quote labels containing spaces, e.g. --labels "food 'garden tools'"`)
	}
	return labels, nil
}

func readLabelsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	return labels, errors.Wrapf(sc.Err(), "read %s", path)
}
