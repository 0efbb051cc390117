package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinlint/internal/predicate"
	"clinlint/internal/syntax"
)

func TestBuildClassifiesHeadAndBodyOccurrences(t *testing.T) {
	tree := syntax.Parse([]byte("a(X) :- b(X), c(X)."))
	idx := predicate.Build(tree)

	head := idx.Occurrences("a", 1)
	if assert.Len(t, head, 1) {
		assert.Equal(t, predicate.LocationHead, head[0].Location)
	}

	body := idx.Occurrences("b", 1)
	if assert.Len(t, body, 1) {
		assert.Equal(t, predicate.LocationBody, body[0].Location)
	}
}

func TestBuildDistinguishesArity(t *testing.T) {
	tree := syntax.Parse([]byte("a(X). a(X,Y)."))
	idx := predicate.Build(tree)

	assert.Len(t, idx.Occurrences("a", 1), 1)
	assert.Len(t, idx.Occurrences("a", 2), 1)
}

func TestBuildClassifiesConditionalLiteralAsCondition(t *testing.T) {
	tree := syntax.Parse([]byte("a :- b : c(X)."))
	idx := predicate.Build(tree)

	cond := idx.Occurrences("c", 1)
	if assert.Len(t, cond, 1) {
		assert.Equal(t, predicate.LocationCondition, cond[0].Location)
	}
}

func TestBuildHandlesPoolArities(t *testing.T) {
	tree := syntax.Parse([]byte("a(X;X,Y)."))
	idx := predicate.Build(tree)

	// the pool contributes both a 1-ary and a 2-ary reading of "a"
	assert.Len(t, idx.Occurrences("a", 1), 1)
	assert.Len(t, idx.Occurrences("a", 2), 1)
}

func TestKeysCoversEveryIndexedPredicate(t *testing.T) {
	tree := syntax.Parse([]byte("a :- b(X)."))
	idx := predicate.Build(tree)

	keys := idx.Keys()
	assert.Len(t, keys, 2)
}
