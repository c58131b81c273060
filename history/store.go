// Package history keeps a ledger of labelling iterations and the manual
// labels each one consumed in the task's SQLite database.
package history

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/teranos/treelabel/errors"
)

// Entry records one finished iteration.
type Entry struct {
	RunID                 string    `json:"run_id"`
	Iteration             int       `json:"iteration"`
	StartedAt             time.Time `json:"started_at"`
	FinishedAt            time.Time `json:"finished_at"`
	Selector              string    `json:"selector"`
	SampleSize            int       `json:"sample_size"`
	Selected              int       `json:"selected"`
	RequiringVerification int       `json:"requiring_verification"`
	Good                  int       `json:"good"`
	Exhausted             bool      `json:"exhausted"`
}

// LabelChange is one manual label an item received during a run.
type LabelChange struct {
	RunID     string    `json:"run_id"`
	Iteration int       `json:"iteration"`
	Label     string    `json:"label"`
	At        time.Time `json:"at"`
}

// Store reads and writes the ledger.
type Store struct {
	db *sql.DB
}

// NewStore returns a store backed by a migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordIteration stores e.
func (s *Store) RecordIteration(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO iterations (
			run_id, iteration, started_at, finished_at, selector, sample_size,
			selected, requiring_verification, good, exhausted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Iteration, e.StartedAt.UTC(), e.FinishedAt.UTC(), e.Selector, e.SampleSize,
		e.Selected, e.RequiringVerification, e.Good, e.Exhausted,
	)
	return errors.Wrapf(err, "record iteration %d", e.Iteration)
}

// RecordManualLabels stores the labels consumed by the run in one
// transaction, in item id order. The run must already be recorded.
func (s *Store) RecordManualLabels(ctx context.Context, runID string, labels map[int64]string) error {
	if len(labels) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin manual labels")
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO manual_labels (run_id, item_id, label) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare manual labels")
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, runID, id, labels[id]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record label of item %d", id)
		}
	}
	return errors.Wrap(tx.Commit(), "commit manual labels")
}

// ListIterations returns every recorded iteration, oldest first.
func (s *Store) ListIterations(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, iteration, started_at, finished_at, selector, sample_size,
		       selected, requiring_verification, good, exhausted
		FROM iterations
		ORDER BY iteration, started_at`)
	if err != nil {
		return nil, errors.Wrap(err, "query iterations")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Iteration, &e.StartedAt, &e.FinishedAt, &e.Selector,
			&e.SampleSize, &e.Selected, &e.RequiringVerification, &e.Good, &e.Exhausted); err != nil {
			return nil, errors.Wrap(err, "scan iteration")
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "iterate iterations")
}

// LabelHistory returns the manual labels itemID received, oldest first.
func (s *Store) LabelHistory(ctx context.Context, itemID int64) ([]LabelChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.run_id, i.iteration, m.label, i.finished_at
		FROM manual_labels m
		JOIN iterations i ON i.run_id = m.run_id
		WHERE m.item_id = ?
		ORDER BY i.iteration, m.id`, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "query label history of item %d", itemID)
	}
	defer rows.Close()

	var changes []LabelChange
	for rows.Next() {
		var c LabelChange
		if err := rows.Scan(&c.RunID, &c.Iteration, &c.Label, &c.At); err != nil {
			return nil, errors.Wrap(err, "scan label change")
		}
		changes = append(changes, c)
	}
	return changes, errors.Wrap(rows.Err(), "iterate label history")
}
