package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinlint/internal/navigation"
	"clinlint/internal/predicate"
	"clinlint/internal/syntax"
)

func TestPredicateUnderCursorResolvesNameAndArity(t *testing.T) {
	src := "a(X) :- b(X, X)."
	tree := syntax.Parse([]byte(src))

	name, arity, ok := navigation.PredicateUnderCursor(tree, 8) // "b" in b(X,X)
	require.True(t, ok)
	assert.Equal(t, "b", name)
	assert.Equal(t, 2, arity)
}

func TestPredicateUnderCursorMissOutsideAnyPredicate(t *testing.T) {
	src := "a."
	tree := syntax.Parse([]byte(src))
	_, _, ok := navigation.PredicateUnderCursor(tree, -1)
	assert.False(t, ok)
}

func TestDefinitionsReturnsOnlyHeadOccurrences(t *testing.T) {
	tree := syntax.Parse([]byte("a(X) :- b(X).\na(Y) :- c(Y)."))
	idx := predicate.Build(tree)

	defs := navigation.Definitions(idx, "a", 1)
	assert.Len(t, defs, 2)
	for _, d := range defs {
		assert.Equal(t, predicate.LocationHead, d.Location)
	}
}

func TestReferencesReturnsBodyAndConditionOccurrences(t *testing.T) {
	tree := syntax.Parse([]byte("a(X) :- b(X).\nc :- d : b(X)."))
	idx := predicate.Build(tree)

	refs := navigation.References(idx, "b", 1)
	assert.Len(t, refs, 2)
	for _, r := range refs {
		assert.Contains(t, []predicate.Location{predicate.LocationBody, predicate.LocationCondition}, r.Location)
	}
}
