package am

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/treelabel/errors"
	"github.com/teranos/treelabel/logger"
)

// ReloadCallback receives the configuration after am.toml changed on disk.
type ReloadCallback func(*Config) error

// ConfigWatcher reloads the user's am.toml when it is edited while
// `treelabel watch` runs, so a new sample size or selector applies to the
// next iteration without a restart.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []ReloadCallback
	started   bool

	ownWrite atomic.Bool // set by Set before it writes the file
	done     chan struct{}
}

var (
	globalWatcher   *ConfigWatcher
	globalWatcherMu sync.Mutex
)

// NewConfigWatcher watches the directory holding path, so editors that
// replace the file on save are noticed too. A non-positive debounce uses
// DefaultDebounceMS.
func NewConfigWatcher(path string, debounce time.Duration) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	path = filepath.Clean(path)
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watch config directory of %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounceMS * time.Millisecond
	}
	return &ConfigWatcher{
		path:     path,
		debounce: debounce,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// OnReload registers fn. Callbacks run in registration order.
func (cw *ConfigWatcher) OnReload(fn ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, fn)
}

// MarkOwnWrite tells the watcher the next change to the file is ours.
func (cw *ConfigWatcher) MarkOwnWrite() { cw.ownWrite.Store(true) }

func (cw *ConfigWatcher) checkOwnWrite() bool { return cw.ownWrite.Swap(false) }

// Start runs the watch loop in the background. Calling it twice is a no-op.
func (cw *ConfigWatcher) Start() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.started {
		return
	}
	cw.started = true
	go cw.loop()
}

func (cw *ConfigWatcher) loop() {
	defer close(cw.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			if !cw.relevant(event) {
				continue
			}
			if cw.checkOwnWrite() {
				logger.Debugw("Ignoring am.toml written by treelabel", logger.FieldPath, event.Name)
				continue
			}
			logger.Debugw("am.toml changed", logger.FieldPath, event.Name, "op", event.Op.String())
			timer.Reset(cw.debounce)

		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error", logger.FieldError, err)

		case <-timer.C:
			if err := cw.reload(); err != nil {
				// keep the previous settings until the file is fixed
				logger.Errorw("Config reload failed", logger.FieldPath, cw.path, logger.FieldError, err)
			}
		}
	}
}

func (cw *ConfigWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path || isBackupFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (cw *ConfigWatcher) reload() error {
	Reset()
	cfg, err := Load()
	if err != nil {
		return err
	}
	logger.Infow("Configuration reloaded",
		logger.FieldPath, cw.path,
		logger.FieldSelector, cfg.Label.Selector,
		"sample_size", cfg.Label.SampleSize)

	cw.mu.Lock()
	callbacks := slices.Clone(cw.callbacks)
	cw.mu.Unlock()
	for _, fn := range callbacks {
		if err := fn(cfg); err != nil {
			logger.Warnw("Config reload callback failed", logger.FieldError, err)
		}
	}
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	started := cw.started
	cw.mu.Unlock()

	err := cw.fsw.Close()
	if started {
		<-cw.done
	}
	return err
}

// isBackupFile matches the .back1..3 files Set rotates next to am.toml.
func isBackupFile(path string) bool {
	ext := filepath.Ext(path)
	return strings.HasPrefix(ext, ".back") && len(ext) == 6 && ext[5] >= '1' && ext[5] <= '3'
}

// SetGlobalWatcher registers the running watcher so Set can mark its writes.
func SetGlobalWatcher(cw *ConfigWatcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = cw
}

// GetGlobalWatcher returns the watcher registered by SetGlobalWatcher, if any.
func GetGlobalWatcher() *ConfigWatcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
