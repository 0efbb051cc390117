package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinlint/internal/syntax"
)

func topKind(t *testing.T, src string) syntax.Kind {
	t.Helper()
	tree := syntax.Parse([]byte(src))
	require.Equal(t, 1, tree.Root().ChildCount(), "expected exactly one top-level statement for %q", src)
	return tree.Root().Child(0).Kind()
}

func TestParseClassifiesStatementShapes(t *testing.T) {
	cases := []struct {
		src  string
		kind syntax.Kind
	}{
		{"a.", syntax.KindFact},
		{"a :- b.", syntax.KindRule},
		{":- a.", syntax.KindConstraint},
		{"#show a/1.", syntax.KindShow},
		{"#external a.", syntax.KindExternal},
		{":~ a. [1]", syntax.KindWeakConstraint},
		{"#minimize{1 : a}.", syntax.KindOptimize},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, topKind(t, tc.src), "src=%q", tc.src)
	}
}

func TestParseRecordsBinaryOp(t *testing.T) {
	tree := syntax.Parse([]byte("a(X+1)."))
	var found bool
	for _, n := range tree.Root().Walk() {
		if n.Kind() == syntax.KindBinaryTerm {
			found = true
			assert.Equal(t, syntax.OpAdd, n.Op())
		}
	}
	assert.True(t, found, "expected a binary_term node for X+1")
}

func TestParseNoErrorsOnWellFormedInput(t *testing.T) {
	tree := syntax.Parse([]byte("a(X) :- b(X), not c(X)."))
	assert.False(t, tree.HasErrors())
}

func TestParseRecordsMissingTokenForUnclosedParen(t *testing.T) {
	tree := syntax.Parse([]byte("a(b."))
	require.True(t, tree.HasErrors())

	errs, missing := syntax.Collect(tree)
	assert.Empty(t, errs)
	if assert.Len(t, missing, 1) {
		assert.Equal(t, syntax.TokRParen, missing[0].Expected)
	}
}

func TestParseRecordsErrorNodeForUnexpectedToken(t *testing.T) {
	tree := syntax.Parse([]byte("a b."))
	require.True(t, tree.HasErrors())

	errs, _ := syntax.Collect(tree)
	assert.NotEmpty(t, errs)
}
