package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a workspace root for ASP source files changed by tools
// outside the editor (formatters, codegen, git checkout), reopens each one
// in the store with its new content and re-analyzes it (the diagnostics are
// not published), debounced so a burst of writes to the same file only
// triggers one re-analysis (grounded on the teacher's
// internal/core.MangleWatcher debounce-and-reload pattern).
type Watcher struct {
	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	store       *Store
	root        string
	maxProblems int
	debounceMap map[string]time.Time
	debounceDur time.Duration

	stopCh chan struct{}
	doneCh chan struct{}

	log *zap.Logger
}

// NewWatcher creates a Watcher over root, backed by store.
func NewWatcher(root string, s *Store, maxProblems int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:         fsw,
		store:       s,
		root:        root,
		maxProblems: maxProblems,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         s.log.Named("watcher"),
	}, nil
}

// Start walks root adding every directory to the fsnotify watch list, then
// runs the event loop in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if addErr := w.fsw.Add(path); addErr != nil {
				w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(addErr))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		w.log.Error("error closing watcher", zap.Error(err))
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
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("fsnotify error", zap.Error(err))
		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsSourceFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.reload(ctx, path)
	}
}

func (w *Watcher) reload(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.log.Warn("failed to read changed file", zap.String("path", path), zap.Error(err))
		}
		return
	}

	uri := "file://" + path
	d := w.store.Open(uri, 0, string(content))
	if _, err := d.Analyze(ctx, w.maxProblems); err != nil {
		w.log.Warn("re-analysis failed", zap.String("uri", uri), zap.Error(err))
	}
}
