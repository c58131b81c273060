package task

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
)

// WatchOptions tunes a Watcher.
type WatchOptions struct {
	// Debounce is how long a sheet must stay quiet before the callback runs.
	Debounce time.Duration
	// MaxRunsPerMinute caps callback runs; 0 disables the cap.
	MaxRunsPerMinute int
}

// DefaultWatchOptions matches the am defaults.
var DefaultWatchOptions = WatchOptions{Debounce: 500 * time.Millisecond, MaxRunsPerMinute: 6}

// SheetChanged is called with the path of a to-verify sheet saved by the
// annotator.
type SheetChanged func(ctx context.Context, path string) error

// Watcher watches a task directory for edited to-verify sheets and runs a
// callback for each, one at a time.
type Watcher struct {
	dir     string
	opts    WatchOptions
	logger  *zap.SugaredLogger
	limiter *rate.Limiter

	mu  sync.Mutex
	own map[string]fileStamp // Prevents reacting to our own sheets
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// NewWatcher returns a watcher for the task directory dir.
func NewWatcher(dir string, opts WatchOptions, log *zap.SugaredLogger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatchOptions.Debounce
	}
	limit := rate.Inf
	if opts.MaxRunsPerMinute > 0 {
		limit = rate.Limit(float64(opts.MaxRunsPerMinute) / 60.0)
	}
	return &Watcher{
		dir:     dir,
		opts:    opts,
		logger:  logger.OrNop(log).With(logger.FieldComponent, "watch", logger.FieldTaskDir, dir),
		limiter: rate.NewLimiter(limit, 1),
		own:     make(map[string]fileStamp),
	}
}

// MarkOwnWrite records the current state of path so the event its write
// produces is not mistaken for the annotator's edit.
func (w *Watcher) MarkOwnWrite(path string) {
	st, err := os.Stat(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.own[path] = fileStamp{size: st.Size(), modTime: st.ModTime()}
}

// isOwnWrite reports whether path is still exactly as we wrote it.
func (w *Watcher) isOwnWrite(path string) bool {
	st, err := os.Stat(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	stamp, ok := w.own[path]
	return ok && stamp.size == st.Size() && stamp.modTime.Equal(st.ModTime())
}

// Run watches until ctx is cancelled. Callback errors are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context, fn SheetChanged) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrapf(err, "watch %s", w.dir)
	}
	w.logger.Infow("Watching for edited sheets")

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	pending := ""

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, ok := SheetIteration(event.Name); !ok {
				continue
			}
			if w.isOwnWrite(event.Name) {
				w.logger.Debugw("Ignoring own write", logger.FieldPath, event.Name)
				continue
			}
			pending = event.Name
			timer.Reset(w.opts.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)

		case <-timer.C:
			path := pending
			pending = ""
			if err := w.limiter.Wait(ctx); err != nil {
				// ctx ended before the limiter allowed another run
				return nil
			}
			w.logger.Infow("Sheet changed", logger.FieldPath, path)
			if err := fn(ctx, path); err != nil {
				w.logger.Errorw("Iteration after sheet change failed", logger.FieldPath, path, logger.FieldError, err)
			}
		}
	}
}
