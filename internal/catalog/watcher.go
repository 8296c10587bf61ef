package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/logging"
)

// DefaultDebounce coalesces bursts of writes into a single reload.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a FileProvider when its catalog file changes.
type Watcher struct {
	provider *FileProvider
	logger   *logging.Logger
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	reloaded chan error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithDebounce sets the delay between the last change and the reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher for p. Call Run to start watching.
func NewWatcher(p *FileProvider, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		provider: p,
		debounce: DefaultDebounce,
		reloaded: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	return w
}

// Reloaded receives the outcome of each reload. Outcomes nobody reads are
// dropped.
func (w *Watcher) Reloaded() <-chan error {
	return w.reloaded
}

// Run watches the catalog file until ctx is done. The parent directory is
// watched so editors that save by rename are noticed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	path, err := filepath.Abs(w.provider.Path())
	if err != nil {
		return fmt.Errorf("resolving catalog path: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	w.logger.Info("watching catalog", "path", path)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	err := w.provider.Reload()
	if err != nil {
		w.logger.Warn("catalog reload failed, keeping previous catalog", "path", w.provider.Path(), "error", err)
	} else {
		w.logger.Info("catalog reloaded", "path", w.provider.Path())
	}

	select {
	case w.reloaded <- err:
	default:
	}
}
