package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the scanner's roots and triggers a debounced rescan
// whenever a relevant file changes. The whole set is rescanned rather
// than patched in place; duplicate flags depend on the full set, so a
// single-file update could leave stale groups behind.
type Watcher struct {
	scanner  *Scanner
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher around an existing scanner.
func NewWatcher(scanner *Scanner, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		scanner:  scanner,
		debounce: defaultDebounce,
		logger:   scanner.logger,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the rescan debounce window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Start begins watching. It returns once the filesystem watches are
// registered; events are handled on a background goroutine until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.started = true
	for _, root := range w.scanner.roots {
		if err := w.addTreeLocked(root); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()

	w.logger.Debug("watcher started", zap.Strings("roots", w.scanner.roots))
	go w.run(ctx)
	return nil
}

// Stop closes the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Create):
		// A new directory needs its own watch before its contents can
		// trigger rescans.
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.scanner.recursive {
				w.mu.Lock()
				_ = w.addTreeLocked(ev.Name)
				w.mu.Unlock()
			}
			w.scheduleRescan(ctx)
			return
		}
		fallthrough
	case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		if matchExtension(ev.Name, w.scanner.extensions) {
			w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
			w.scheduleRescan(ctx)
		}
	}
}

func (w *Watcher) scheduleRescan(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		if _, err := w.scanner.Scan(ctx); err != nil {
			w.logger.Warn("rescan failed", zap.Error(err))
		}
	})
}

func (w *Watcher) addTreeLocked(root string) error {
	root = filepath.Clean(root)
	if !w.scanner.recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug("watch add failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
