package semantic_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"clinlint/internal/semantic"
	"clinlint/internal/syntax"
)

// recompute runs a fresh engine over src in one full (dirty == nil) pass and
// returns a copy of every bundle keyed by node id, for comparing two
// differently-arrived-at stores.
func recompute(src string) (*syntax.Tree, map[syntax.NodeID]*semantic.Bundle) {
	tree := syntax.Parse([]byte(src))
	eng := semantic.NewEngine()
	eng.Run(tree, nil)

	out := make(map[syntax.NodeID]*semantic.Bundle)
	for _, n := range tree.Root().Walk() {
		if b, ok := eng.Store().Get(n.ID()); ok {
			out[n.ID()] = b
		}
	}
	return tree, out
}

// TestIncrementalMatchesFullRecompute exercises spec §8's equivalence
// property: re-running the engine over an edited document with a dirty set
// restricted to the edited range must produce the same attribute map as
// parsing the post-edit text from scratch.
func TestIncrementalMatchesFullRecompute(t *testing.T) {
	before := "a(X) :- b(X), c(Y)."
	after := "a(X) :- b(X), c(Z)."

	tree, _ := recompute(before)
	eng := semantic.NewEngine()
	eng.Run(tree, nil)

	// the edit touches only the "Y"/"Z" byte range
	editStart, editEnd := len(before)-3, len(before)-2
	dirty := syntax.NewDirtySet([][2]int{{editStart, editEnd}})

	afterTree := syntax.Parse([]byte(after))
	eng.Run(afterTree, dirty)

	incremental := make(map[syntax.NodeID]*semantic.Bundle)
	for _, n := range afterTree.Root().Walk() {
		if b, ok := eng.Store().Get(n.ID()); ok {
			incremental[n.ID()] = b
		}
	}

	_, full := recompute(after)

	if diff := cmp.Diff(full, incremental); diff != "" {
		t.Errorf("incremental recompute diverged from full recompute (-full +incremental):\n%s", diff)
	}
}

func TestStoreGarbageCollectsRetiredNodes(t *testing.T) {
	eng := semantic.NewEngine()
	tree := syntax.Parse([]byte("a(X). b(Y)."))
	eng.Run(tree, nil)
	assert.Equal(t, len(tree.Root().Walk()), eng.Store().Len())

	// re-running over a shorter document must shrink the store to match
	// (spec §5 "|attribute_map| = |nodes(current_tree)|")
	shorter := syntax.Parse([]byte("a(X)."))
	eng.Run(shorter, nil)
	assert.Equal(t, len(shorter.Root().Walk()), eng.Store().Len())
}

func TestVariableBundleProvidesItsOwnName(t *testing.T) {
	tree := syntax.Parse([]byte("a(X)."))
	eng := semantic.NewEngine()
	eng.Run(tree, nil)

	var varNode *syntax.Node
	for _, n := range tree.Root().Walk() {
		if n.Kind() == syntax.KindVariable {
			varNode = n
		}
	}
	if !assert.NotNil(t, varNode) {
		return
	}
	b, ok := eng.Store().Get(varNode.ID())
	if assert.True(t, ok) {
		assert.True(t, b.Provide.Contains("X"))
		assert.Empty(t, b.Depend)
	}
}
