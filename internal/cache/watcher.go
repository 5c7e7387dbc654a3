package cache

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dreamgate/internal/logging"
)

// Watcher watches a config directory and invalidates the in-memory cache
// entry for any config file that changes. Invalidation only drops the hot
// entry; the next Get re-hashes the source and decides what to reload.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cache   *ConfigCache
	dir     string

	debounce    map[string]time.Time
	debounceDur time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher over dir for the given cache.
func NewWatcher(dir string, cache *ConfigCache) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		cache:       cache,
		dir:         dir,
		debounce:    make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // batches rapid editor saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a
// goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		logging.Get(logging.CategoryCache).Warn("watcher: initial watch of %s failed: %v", w.dir, err)
	} else {
		logging.Cache("watching config directory: %s", w.dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryCache).Error("watcher: close failed: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryCache).Error("watcher: %v", err)
		case <-ticker.C:
			w.flushDebounced()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isConfigFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	logging.CacheDebug("watcher: %s on %s", event.Op, filepath.Base(event.Name))
	w.mu.Lock()
	w.debounce[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushDebounced() {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, stamp := range w.debounce {
		if now.Sub(stamp) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.debounce, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.cache.Invalidate(path)
	}
}

func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
