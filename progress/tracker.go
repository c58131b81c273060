package progress

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
)

// HistoryFile collects one Record per iteration.
const HistoryFile = "all-stats.jsonl"

// Record is one line of the history file.
type Record struct {
	StartTime time.Time `json:"start_time"`
	Iteration int       `json:"iteration"`
	RunID     string    `json:"run_id,omitempty"`
	Stats     Stats     `json:"stats"`
}

// Tracker writes statistics into a task directory.
type Tracker struct {
	dir       string
	startTime time.Time
	logger    *zap.SugaredLogger
}

// NewTracker returns a tracker for the task in dir started at startTime.
func NewTracker(dir string, startTime time.Time, log *zap.SugaredLogger) *Tracker {
	return &Tracker{dir: dir, startTime: startTime, logger: logger.OrNop(log)}
}

// StatsPath returns the path of the statistics document for iteration.
func (t *Tracker) StatsPath(iteration int) string {
	return filepath.Join(t.dir, fmt.Sprintf("%d-stats.json", iteration))
}

// Update writes the iteration document and appends it to the history file.
func (t *Tracker) Update(iteration int, runID string, s Stats) error {
	path := t.StatsPath(iteration)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal stats")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	t.logger.Infow("Saved stats", logger.FieldPath, path)

	line, err := json.Marshal(Record{StartTime: t.startTime, Iteration: iteration, RunID: runID, Stats: s})
	if err != nil {
		return errors.Wrap(err, "marshal history record")
	}
	history := filepath.Join(t.dir, HistoryFile)
	f, err := os.OpenFile(history, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", history)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return errors.Wrapf(err, "append %s", history)
	}
	t.logger.Debugw("Updated stats history", logger.FieldPath, history, logger.FieldIteration, iteration)
	return errors.Wrapf(f.Close(), "close %s", history)
}

// Records reads the history file in the order it was written. A missing file
// yields no records.
func (t *Tracker) Records() ([]Record, error) {
	path := filepath.Join(t.dir, HistoryFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedRecord, "%s line %d: %v", path, line, err)
		}
		records = append(records, r)
	}
	return records, errors.Wrapf(scanner.Err(), "read %s", path)
}
