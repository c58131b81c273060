// Package runner performs one labelling iteration on a task directory and
// persists everything it produces.
package runner

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/teranos/treelabel/db"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/history"
	"github.com/teranos/treelabel/labelling"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/progress"
	"github.com/teranos/treelabel/selector"
	"github.com/teranos/treelabel/task"
)

// Options configures an iteration.
type Options struct {
	Selector   string
	SampleSize int
	// Seed drives the randomized selectors; 0 draws a fresh one.
	Seed   uint64
	Weight selector.DepthWeight
}

// Report is what an iteration produced.
type Report struct {
	Dir          string            `json:"dir"`
	RunID        string            `json:"run_id"`
	Iteration    int               `json:"iteration"`
	Selector     string            `json:"selector"`
	Seed         uint64            `json:"seed"`
	SampleSize   int               `json:"sample_size"`
	Selected     int               `json:"selected"`
	Exhausted    bool              `json:"exhausted"`
	ToVerifyPath string            `json:"to_verify_path,omitempty"`
	ResolvedPath string            `json:"resolved_path,omitempty"`
	StatsPath    string            `json:"stats_path"`
	Stats        progress.Stats    `json:"stats"`
	History      []progress.Record `json:"-"`
}

// Runner runs iterations. OnWrite, when set, is told about every file the
// runner writes into the task directory.
type Runner struct {
	opts    Options
	logger  *zap.SugaredLogger
	OnWrite func(path string)
}

// New returns a runner; a nil logger keeps it silent.
func New(opts Options, log *zap.SugaredLogger) *Runner {
	return &Runner{opts: opts, logger: logger.OrNop(log)}
}

// Run opens the task in dir, runs one iteration on the labels of its latest
// sheet and saves the sheets, statistics and history of the iteration.
func (r *Runner) Run(ctx context.Context, dir string) (*Report, error) {
	tk, err := task.Open(dir, r.logger)
	if err != nil {
		return nil, err
	}
	log := r.logger.With(logger.FieldTaskDir, tk.Dir)

	seed := r.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	sel, err := selector.New(r.opts.Selector, selector.Options{Seed: seed, Weight: r.opts.Weight})
	if err != nil {
		return nil, err
	}

	driver := labelling.NewDriver(sel, labelling.Options{
		Allowed:    tk.Config.AllowedLabels,
		SampleSize: r.opts.SampleSize,
	}, log)
	res, err := driver.Run(tk.Tree, tk.Manual, tk.Iteration)
	if err != nil {
		return nil, errors.Wrapf(err, "iteration %d", tk.Iteration+1)
	}
	tk.Iteration = res.Iteration

	rep := &Report{
		Dir:        tk.Dir,
		RunID:      res.RunID.String(),
		Iteration:  res.Iteration,
		Selector:   sel.Name(),
		Seed:       seed,
		SampleSize: res.SampleSize,
		Selected:   len(res.Selected),
		Exhausted:  res.Exhausted,
	}

	if rep.ToVerifyPath, err = tk.SaveToVerify(); err != nil {
		return nil, err
	}
	r.wrote(rep.ToVerifyPath)
	if rep.ResolvedPath, err = tk.SaveResolved(); err != nil {
		return nil, err
	}
	r.wrote(rep.ResolvedPath)

	rep.Stats = progress.Collect(tk.Tree, tk.Config.AllowedLabels, tk.Ingest)
	tracker := progress.NewTracker(tk.Dir, tk.Config.StartTime, log)
	if err := tracker.Update(res.Iteration, rep.RunID, rep.Stats); err != nil {
		return nil, err
	}
	rep.StatsPath = tracker.StatsPath(res.Iteration)
	r.wrote(rep.StatsPath)
	if rep.History, err = tracker.Records(); err != nil {
		return nil, err
	}

	if err := r.record(ctx, tk, res, rep); err != nil {
		return nil, err
	}

	log.Infow("Iteration finished",
		logger.FieldIteration, rep.Iteration,
		logger.FieldRunID, rep.RunID,
		logger.FieldSelector, rep.Selector,
		logger.FieldSampleSize, rep.SampleSize,
		logger.FieldCount, rep.Selected)
	return rep, nil
}

func (r *Runner) record(ctx context.Context, tk *task.Task, res *labelling.Result, rep *Report) error {
	conn, err := db.OpenWithMigrations(tk.HistoryPath(), r.logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := history.NewStore(conn)
	err = store.RecordIteration(ctx, history.Entry{
		RunID:                 rep.RunID,
		Iteration:             res.Iteration,
		StartedAt:             res.StartedAt,
		FinishedAt:            res.FinishedAt,
		Selector:              rep.Selector,
		SampleSize:            res.SampleSize,
		Selected:              len(res.Selected),
		RequiringVerification: res.RequiringVerification,
		Good:                  rep.Stats.PredictedLabels.NGoodLabels,
		Exhausted:             res.Exhausted,
	})
	if err != nil {
		return err
	}
	return store.RecordManualLabels(ctx, rep.RunID, tk.Manual)
}

func (r *Runner) wrote(path string) {
	if path != "" && r.OnWrite != nil {
		r.OnWrite(path)
	}
}
