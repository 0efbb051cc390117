package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinlint/internal/store"
)

func TestIsSourceFile(t *testing.T) {
	assert.True(t, store.IsSourceFile("a.lp"))
	assert.True(t, store.IsSourceFile("a.asp"))
	assert.True(t, store.IsSourceFile("a.clingo"))
	assert.False(t, store.IsSourceFile("a.txt"))
	assert.False(t, store.IsSourceFile("a"))
}

func TestOpenGetClose(t *testing.T) {
	s := store.New()

	d := s.Open("file:///a.lp", 1, "a.")
	got, ok := s.Get("file:///a.lp")
	require.True(t, ok)
	assert.Same(t, d, got)

	assert.Len(t, s.URIs(), 1)

	s.Close("file:///a.lp")
	_, ok = s.Get("file:///a.lp")
	assert.False(t, ok)
	assert.Empty(t, s.URIs())
}

func TestOpenReplacesExistingDocument(t *testing.T) {
	s := store.New()
	first := s.Open("file:///a.lp", 1, "a.")
	second := s.Open("file:///a.lp", 2, "b.")

	got, ok := s.Get("file:///a.lp")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, second)
}

func TestIndexAllOpensAndAnalyzesSourceFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lp"), []byte("a(X)."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not asp"), 0o644))

	s := store.New()
	require.NoError(t, s.IndexAll(context.Background(), dir, 0))

	uris := s.URIs()
	require.Len(t, uris, 1)

	d, ok := s.Get(uris[0])
	require.True(t, ok)
	assert.Contains(t, uris[0], "a.lp")
	assert.NotNil(t, d.Tree())
}
