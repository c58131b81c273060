package task

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestWatcherRunsCallbackForEditedSheet(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w := NewWatcher(dir, WatchOptions{Debounce: 20 * time.Millisecond}, zaptest.NewLogger(t).Sugar())

	var mu sync.Mutex
	var seen []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, path string) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, filepath.Base(path))
			return nil
		})
	}()

	sheet := filepath.Join(dir, "1-to-verify.tsv")
	other := filepath.Join(dir, "notes.txt")
	i := 0
	require.Eventually(t, func() bool {
		// keep writing until the watcher is registered and reacts
		i++
		_ = os.WriteFile(other, []byte(strconv.Itoa(i)), 0o644)
		_ = os.WriteFile(sheet, []byte("id\tlabel\n1\tA"+strconv.Itoa(i)+"\n"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, name := range seen {
		assert.Equal(t, "1-to-verify.tsv", name)
	}
}

func TestWatcherOwnWrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, WatchOptions{}, nil)
	path := filepath.Join(dir, "2-to-verify.tsv")

	assert.False(t, w.isOwnWrite(path), "missing file")

	require.NoError(t, os.WriteFile(path, []byte("id\tlabel\n"), 0o644))
	assert.False(t, w.isOwnWrite(path))

	w.MarkOwnWrite(path)
	assert.True(t, w.isOwnWrite(path))

	require.NoError(t, os.WriteFile(path, []byte("id\tlabel\n1\tA\n"), 0o644))
	assert.False(t, w.isOwnWrite(path), "annotator edit changes the size")
}

func TestWatcherStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewWatcher(t.TempDir(), WatchOptions{MaxRunsPerMinute: 1}, nil).Run(ctx, func(context.Context, string) error {
		t.Error("callback must not run")
		return nil
	})
	assert.NoError(t, err)
}

func TestWatcherMissingDirectory(t *testing.T) {
	err := NewWatcher(filepath.Join(t.TempDir(), "gone"), WatchOptions{}, nil).Run(context.Background(), nil)
	assert.Error(t, err)
}
