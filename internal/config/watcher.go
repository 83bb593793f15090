package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/helixtrade/causegraph/internal/logging"
)

// ReloadCallback is invoked with the freshly loaded config and affinity
// table after the watched file changes. Errors are logged and watching
// continues with the previous valid configuration.
type ReloadCallback func(cfg Config, affinity *AffinityTable) error

// WatcherConfig holds configuration for the config file watcher.
type WatcherConfig struct {
	// FilePath is the YAML config file to watch.
	FilePath string

	// Debounce coalesces bursts of file events (editor save sequences) into
	// a single reload. Default: 500ms.
	Debounce time.Duration
}

// Watcher watches a config file and triggers debounced reload callbacks.
// Invalid content during reload is logged, never fatal: the engine keeps
// running on the last valid configuration.
type Watcher struct {
	config   WatcherConfig
	callback ReloadCallback
	logger   *logging.Logger
	cancel   context.CancelFunc
	stopped  chan struct{}

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(cfg WatcherConfig, callback ReloadCallback) (*Watcher, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("FilePath cannot be empty")
	}
	if callback == nil {
		return nil, fmt.Errorf("callback cannot be nil")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	return &Watcher{
		config:   cfg,
		callback: callback,
		logger:   logging.GetLogger("config.watcher"),
		stopped:  make(chan struct{}),
	}, nil
}

// Start loads the file once, delivers it to the callback, and then watches
// for changes until Stop is called or the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	cfg, affinity, err := Load(w.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}
	if err := w.callback(cfg, affinity); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}
	w.logger.Info("loaded initial config from %s", w.config.FilePath)

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.watchLoop(watchCtx)
	return nil
}

// Stop terminates the watch loop.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.stopped
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("failed to create file watcher: %v", err)
		return
	}
	defer fsw.Close()

	// Watch the directory, not the file: editors replace files by rename and
	// the inode-level watch would silently go stale.
	dir := filepath.Dir(w.config.FilePath)
	if err := fsw.Add(dir); err != nil {
		w.logger.Error("failed to watch %s: %v", dir, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.config.FilePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error: %v", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, affinity, err := Load(w.config.FilePath)
	if err != nil {
		w.logger.Warn("reload skipped, config invalid: %v", err)
		return
	}
	if err := w.callback(cfg, affinity); err != nil {
		w.logger.Warn("reload callback failed: %v", err)
		return
	}
	w.logger.Info("reloaded config from %s", w.config.FilePath)
}
