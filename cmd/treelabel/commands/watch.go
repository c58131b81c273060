package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/treelabel/am"
	"github.com/teranos/treelabel/display"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/runner"
	"github.com/teranos/treelabel/task"
)

// WatchCmd re-runs label whenever the annotator saves a sheet
var WatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Run an iteration whenever the to-verify sheet is saved",
	Long: `Watch a task directory and run one labelling iteration each time the
latest to-verify sheet is saved. Sheets written by treelabel itself are
ignored. Changes to ~/.treelabel/am.toml apply from the next iteration.

Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addIterationFlags(WatchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return err
	}
	dir := args[0]
	log := logger.ComponentLogger("watch")

	// the directory must hold a task before we start waiting on it
	if _, err := task.Open(dir, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	current := make(chan *am.Config, 1)
	if cw, err := newConfigWatcher(cfg); err == nil {
		cw.OnReload(func(c *am.Config) error {
			select {
			case <-current:
			default:
			}
			current <- c
			return nil
		})
		am.SetGlobalWatcher(cw)
		cw.Start()
		defer func() {
			am.SetGlobalWatcher(nil)
			cw.Stop()
		}()
	} else {
		log.Debugw("Not watching user config", logger.FieldError, err)
	}

	w := task.NewWatcher(dir, task.WatchOptions{
		Debounce:         cfg.Debounce(),
		MaxRunsPerMinute: cfg.Watch.MaxRunsPerMinute,
	}, log)

	return w.Run(ctx, func(ctx context.Context, path string) error {
		select {
		case cfg = <-current:
			log.Infow("Using reloaded configuration")
		default:
		}

		latest, _, err := task.LatestSheet(dir)
		if err != nil {
			return err
		}
		if filepath.Clean(latest) != filepath.Clean(path) {
			log.Warnw("Ignoring an older sheet; only the latest one feeds the next iteration",
				logger.FieldPath, path)
			return nil
		}

		r := runner.New(runnerOptions(cmd, cfg), log)
		r.OnWrite = w.MarkOwnWrite
		rep, err := r.Run(ctx, dir)
		if err != nil {
			return err
		}
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cmd.OutOrStdout(), rep)
		}
		return printReport(cmd, rep)
	})
}

func newConfigWatcher(cfg *am.Config) (*am.ConfigWatcher, error) {
	path := am.UserConfigPath()
	if path == "" {
		return nil, errors.New("could not determine home directory")
	}
	return am.NewConfigWatcher(path, cfg.Debounce())
}
