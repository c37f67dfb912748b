package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventHandler receives one object change event.
type EventHandler func(ctx context.Context, event entity.ObjectChangeEvent) error

// Watcher turns writes of *.json files under root into object change events.
// Writes are debounced so a file being copied produces a single event.
type Watcher struct {
	root     string
	handler  EventHandler
	logger   *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a watcher; Run starts it.
func NewWatcher(root string, handler EventHandler, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		handler:  handler,
		logger:   logger,
		debounce: debounce,
		watcher:  w,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	tick := w.debounce / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Export watcher error", zap.Error(err))

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Could not watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushPending(ctx context.Context) {
	now := time.Now()
	ready := []string{}

	w.mu.Lock()
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			continue
		}
		name := filepath.ToSlash(rel)
		if err := w.handler(ctx, entity.ObjectChangeEvent{Name: name}); err != nil {
			w.logger.Error("Object change handling failed", zap.String("object", name), zap.Error(err))
		}
	}
}
