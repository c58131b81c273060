// Package task manages a labelling task directory: its configuration, the
// copied tree, and the sheets exchanged with the annotator each iteration.
//
// Layout:
//
//	config.yaml          task configuration
//	<tree>.yaml          copy of the source tree
//	<n>-to-verify.tsv    items shown to the annotator after iteration n
//	<n>-good-labels.tsv  items resolved after iteration n
//	<n>-stats.json       statistics of iteration n
//	all-stats.jsonl      statistics history
//	history.db           iteration ledger
package task

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/treelabel/catalog"
	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/labels"
	"github.com/teranos/treelabel/logger"
	"github.com/teranos/treelabel/tree"
)

// HistoryFile is the name of the iteration ledger.
const HistoryFile = "history.db"

var sheetPattern = regexp.MustCompile(`^(\d+)-to-verify\.tsv$`)

// Task is an opened task directory.
type Task struct {
	Dir    string
	Config *Config
	Tree   *tree.Tree
	// Iteration is the number of the latest sheet, 0 for a fresh task.
	Iteration int
	// Manual holds the single labels read from the latest sheet.
	Manual map[int64]string
	Ingest labels.Ingest
	// SheetPath is the sheet Manual came from, empty for a fresh task.
	SheetPath string

	logger *zap.SugaredLogger
}

// Initialize creates a task in dir, which must not exist yet. On failure
// nothing is left behind.
func Initialize(dir, treePath string, allowed []string, log *zap.SugaredLogger) (_ *Task, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}
	treePath, err = filepath.Abs(treePath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", treePath)
	}

	// a bad tree or alphabet leaves no directory behind
	if _, err := catalog.ParseFile(treePath); err != nil {
		return nil, err
	}

	dest := filepath.Join(dir, filepath.Base(treePath))
	cfg := &Config{
		FormatVersion:    FormatVersion,
		Dir:              dir,
		TreePath:         dest,
		OriginalTreePath: treePath,
		AllowedLabels:    allowed,
		StartTime:        time.Now().UTC().Truncate(time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return nil, errors.WithHint(
				errors.Newf("directory %s already exists", dir),
				"perhaps this is a previous task?")
		}
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				logger.OrNop(log).Warnw("Could not remove partial task", logger.FieldTaskDir, dir, logger.FieldError, rmErr)
			}
		}
	}()
	if err := copyFile(treePath, dest); err != nil {
		return nil, err
	}
	if err := writeConfig(filepath.Join(dir, ConfigFile), cfg); err != nil {
		return nil, err
	}
	logger.OrNop(log).Infow("Created task", logger.FieldTaskDir, dir, logger.FieldCount, len(allowed))

	return Open(dir, log)
}

// Open reads the task in dir, prunes its tree and loads the latest sheet.
func Open(dir string, log *zap.SugaredLogger) (*Task, error) {
	log = logger.OrNop(log)
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}

	cfg, err := readConfig(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, err
	}
	tr, err := catalog.ParseFile(cfg.TreePath)
	if err != nil {
		return nil, err
	}
	removed := tr.Prune()
	log.Debugw("Pruned tree", logger.FieldCount, removed)

	t := &Task{Dir: dir, Config: cfg, Tree: tr, Manual: map[int64]string{}, logger: log}

	sheet, iteration, err := LatestSheet(dir)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		return t, nil
	}

	manual, ingest, err := labels.ReadFile(sheet, cfg.AllowedLabels)
	if err != nil {
		return nil, err
	}
	t.Iteration, t.Manual, t.Ingest, t.SheetPath = iteration, manual, ingest, sheet
	log.Infow("Loaded manual labels", logger.FieldPath, sheet, logger.FieldCount, len(manual))

	if ingest.Missing > 0 {
		log.Warnw("Some selected items lack a label; consider a larger sample next time",
			"n_missing_rows", ingest.Missing, "n_rows", ingest.Rows)
	}
	if ingest.Ambiguous > 0 {
		log.Warnw("Some items still carry several labels; they are ignored this iteration",
			"n_ambiguous_rows", ingest.Ambiguous, "n_rows", ingest.Rows)
	}
	return t, nil
}

// LatestSheet returns the to-verify sheet with the highest iteration number
// in dir, or "" when there is none.
func LatestSheet(dir string) (string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, errors.Wrapf(err, "list %s", dir)
	}
	path, latest := "", -1
	for _, e := range entries {
		n, ok := SheetIteration(e.Name())
		if ok && !e.IsDir() && n > latest {
			path, latest = filepath.Join(dir, e.Name()), n
		}
	}
	return path, max(latest, 0), nil
}

// SheetIteration parses the iteration number out of a to-verify file name.
func SheetIteration(name string) (int, bool) {
	m := sheetPattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// Path returns the path of a per-iteration file of the task.
func (t *Task) Path(suffix, ext string) string {
	return filepath.Join(t.Dir, fmt.Sprintf("%d-%s.%s", t.Iteration, suffix, ext))
}

// HistoryPath returns the path of the iteration ledger.
func (t *Task) HistoryPath() string { return filepath.Join(t.Dir, HistoryFile) }

// SaveToVerify writes the to-verify sheet of the current iteration. It
// returns "" without writing when no item was selected.
func (t *Task) SaveToVerify() (string, error) {
	if !t.anySelected() {
		return "", nil
	}
	return t.save(t.Path("to-verify", "tsv"), labels.WriteToVerify)
}

// SaveResolved writes the resolved sheet of the current iteration. It
// returns "" without writing when nothing is resolved.
func (t *Task) SaveResolved() (string, error) {
	if len(labels.Resolved(t.Tree)) == 0 {
		return "", nil
	}
	return t.save(t.Path("good-labels", "tsv"), labels.WriteResolved)
}

func (t *Task) anySelected() bool {
	for _, n := range t.Tree.Items() {
		if t.Tree.Node(n).Labels.Selected {
			return true
		}
	}
	return false
}

func (t *Task) save(path string, fn func(io.Writer, *tree.Tree) (int, error)) (string, error) {
	n, err := labels.WriteFile(path, t.Tree, fn)
	if err != nil {
		return "", err
	}
	t.logger.Infow("Saved sheet", logger.FieldPath, path, logger.FieldCount, n)
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copy %s", src)
	}
	return errors.Wrapf(out.Close(), "close %s", dst)
}
