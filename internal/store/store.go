// Package store holds the workspace-wide collection of open documents and
// the indexer/watcher that keep it current with the filesystem
// (spec §4.7/§5, SPEC_FULL.md §4.7/§9).
package store

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clinlint/internal/document"
	"clinlint/internal/logging"
)

// sourceExtensions lists the file suffixes the workspace indexer and
// watcher treat as ASP source (SPEC_FULL.md §4.7: "*.lp/*.asp/*.clingo").
var sourceExtensions = map[string]bool{
	".lp":     true,
	".asp":    true,
	".clingo": true,
}

// IsSourceFile reports whether path has a recognized ASP source extension.
func IsSourceFile(path string) bool {
	return sourceExtensions[filepath.Ext(path)]
}

// Store is the URI -> Document map. Per-document serialization is the
// Document's own mutex; Store only guards the map itself (spec §5:
// "Semantic-store maps inside a Document are not shared across documents;
// no locking is required during a pass").
type Store struct {
	mu   sync.RWMutex
	docs map[string]*document.Document

	log *zap.Logger
}

// New creates an empty document store.
func New() *Store {
	return &Store{
		docs: make(map[string]*document.Document),
		log:  logging.Get(logging.CategoryStore),
	}
}

// Open registers a new document at uri, replacing any existing entry.
func (s *Store) Open(uri string, version int, content string) *document.Document {
	d := document.Open(uri, version, content)
	s.mu.Lock()
	s.docs[uri] = d
	s.mu.Unlock()
	return d
}

// Get returns the document at uri, if open.
func (s *Store) Get(uri string) (*document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

// Close removes uri from the store.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// URIs returns every currently-open document URI.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	return out
}

// IndexAll walks root for ASP source files and opens+analyzes each one,
// bounded to GOMAXPROCS concurrent analyses since documents are
// independent of each other (SPEC_FULL.md §4.7).
func (s *Store) IndexAll(ctx context.Context, root string, maxProblems int) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSourceFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		path := path
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				s.log.Warn("indexer: failed to read file", zap.String("path", path), zap.Error(err))
				return nil
			}
			uri := "file://" + path
			d := s.Open(uri, 0, string(content))
			if _, err := d.Analyze(gctx, maxProblems); err != nil {
				s.log.Warn("indexer: analysis failed", zap.String("uri", uri), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}
