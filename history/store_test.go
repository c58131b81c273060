package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tltest "github.com/teranos/treelabel/internal/testing"
)

func entry(runID string, iteration int, at time.Time) Entry {
	return Entry{
		RunID:                 runID,
		Iteration:             iteration,
		StartedAt:             at,
		FinishedAt:            at.Add(time.Second),
		Selector:              "top-down",
		SampleSize:            3,
		Selected:              3,
		RequiringVerification: 10,
		Good:                  4,
	}
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	store := NewStore(tltest.CreateTestDB(t))
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	second := entry("run-b", 2, at.Add(time.Hour))
	second.Exhausted = true
	require.NoError(t, store.RecordIteration(ctx, second))
	require.NoError(t, store.RecordIteration(ctx, entry("run-a", 1, at)))

	entries, err := store.ListIterations(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "run-a", entries[0].RunID)
	assert.True(t, at.Equal(entries[0].StartedAt))
	assert.Equal(t, "top-down", entries[0].Selector)
	assert.Equal(t, 10, entries[0].RequiringVerification)
	assert.False(t, entries[0].Exhausted)
	assert.True(t, entries[1].Exhausted)

	err = store.RecordIteration(ctx, entry("run-a", 3, at))
	assert.Error(t, err, "run ids are unique")
}

func TestLabelHistory(t *testing.T) {
	ctx := context.Background()
	store := NewStore(tltest.CreateTestDB(t))
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordIteration(ctx, entry("run-a", 1, at)))
	require.NoError(t, store.RecordIteration(ctx, entry("run-b", 2, at.Add(time.Hour))))
	require.NoError(t, store.RecordManualLabels(ctx, "run-b", map[int64]string{7: "home"}))
	require.NoError(t, store.RecordManualLabels(ctx, "run-a", map[int64]string{7: "food", 8: "?"}))
	require.NoError(t, store.RecordManualLabels(ctx, "run-a", nil))

	changes, err := store.LabelHistory(ctx, 7)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "food", changes[0].Label)
	assert.Equal(t, 1, changes[0].Iteration)
	assert.Equal(t, "home", changes[1].Label)
	assert.Equal(t, "run-b", changes[1].RunID)

	changes, err = store.LabelHistory(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestRecordManualLabelsNeedsIteration(t *testing.T) {
	store := NewStore(tltest.CreateTestDB(t))
	err := store.RecordManualLabels(context.Background(), "unknown-run", map[int64]string{1: "A"})
	assert.Error(t, err)
}

func TestRecordIteration_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := entry("run-a", 1, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	mock.ExpectExec(`INSERT INTO iterations`).
		WithArgs(e.RunID, e.Iteration, e.StartedAt, e.FinishedAt, e.Selector, e.SampleSize,
			e.Selected, e.RequiringVerification, e.Good, e.Exhausted).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewStore(db).RecordIteration(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordManualLabels_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO manual_labels`)
	prep.ExpectExec().WithArgs("run-a", int64(3), "food").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("run-a", int64(5), "home").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = NewStore(db).RecordManualLabels(context.Background(), "run-a", map[int64]string{5: "home", 3: "food"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 5")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListIterations_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"run_id", "iteration", "started_at", "finished_at", "selector", "sample_size",
		"selected", "requiring_verification", "good", "exhausted",
	}).AddRow("run-a", 1, at, at, "weighted", 2, 2, 5, 1, false)
	mock.ExpectQuery(`SELECT (.+) FROM iterations`).WillReturnRows(rows)

	entries, err := NewStore(db).ListIterations(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "weighted", entries[0].Selector)
	assert.Equal(t, 5, entries[0].RequiringVerification)
	assert.NoError(t, mock.ExpectationsWereMet())
}
