package menu

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher monitors a menu YAML file for changes and replaces the catalog in
// a [Store] when the file is modified. It uses polling (not fsnotify) to
// keep dependencies minimal.
type Watcher struct {
	path     string
	store    Store
	interval time.Duration
	onReload func(*Menu)

	mu       sync.Mutex
	done     chan struct{}
	stopOnce sync.Once

	// last known file state for change detection
	lastMtime time.Time
	lastHash  [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 30 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithOnReload registers a callback invoked with each freshly loaded catalog
// after it has been stored, including the initial load. The callback runs on
// the watcher goroutine and must not block for long.
func WithOnReload(fn func(*Menu)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a menu file watcher. It loads the initial menu into
// store immediately and starts polling in a background goroutine.
func NewWatcher(path string, store Store, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		store:    store,
		interval: 30 * time.Second,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	hash, mtime, err := w.loadAndReplace()
	if err != nil {
		return nil, fmt.Errorf("menu: watcher initial load: %w", err)
	}
	w.lastHash = hash
	w.lastMtime = mtime

	go w.poll()
	return w, nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

// poll runs in a background goroutine, checking the menu file periodically.
func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reads the menu file and, if it has changed and is valid, replaces
// the catalog in the store. An invalid file keeps the previous catalog.
func (w *Watcher) check() {
	// Quick mtime check first to avoid hashing unchanged files.
	info, err := os.Stat(w.path)
	if err != nil {
		slog.Warn("menu watcher: cannot stat file", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	mtime := w.lastMtime
	w.mu.Unlock()

	if info.ModTime().Equal(mtime) {
		return
	}

	hash, newMtime, err := w.loadAndReplace()
	if err != nil {
		slog.Warn("menu watcher: failed to reload menu", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	changed := hash != w.lastHash
	w.lastHash = hash
	w.lastMtime = newMtime
	w.mu.Unlock()

	if changed {
		slog.Info("menu watcher: catalog reloaded", "path", w.path)
	}
}

// loadAndReplace reads and parses the menu file, stores the result, and
// returns the file's SHA-256 hash and modification time. If the file has
// not changed since the last load, the store write is skipped.
func (w *Watcher) loadAndReplace() ([sha256.Size]byte, time.Time, error) {
	var zeroHash [sha256.Size]byte

	data, err := os.ReadFile(w.path)
	if err != nil {
		return zeroHash, time.Time{}, err
	}
	info, err := os.Stat(w.path)
	if err != nil {
		return zeroHash, time.Time{}, err
	}

	hash := sha256.Sum256(data)

	w.mu.Lock()
	unchanged := hash == w.lastHash
	w.mu.Unlock()
	if unchanged {
		return hash, info.ModTime(), nil
	}

	m, err := LoadMenuFromReader(bytes.NewReader(data))
	if err != nil {
		return zeroHash, time.Time{}, err
	}
	if err := w.store.Replace(context.Background(), m); err != nil {
		return zeroHash, time.Time{}, err
	}
	if w.onReload != nil {
		w.onReload(m)
	}

	return hash, info.ModTime(), nil
}
