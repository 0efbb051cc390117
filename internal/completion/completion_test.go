package completion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinlint/internal/completion"
	"clinlint/internal/predicate"
	"clinlint/internal/semantic"
	"clinlint/internal/syntax"
)

func TestKeywordsIncludesLiteralList(t *testing.T) {
	items := completion.Keywords()
	assert.NotEmpty(t, items)

	labels := make(map[string]bool, len(items))
	for _, it := range items {
		assert.Equal(t, completion.KindKeyword, it.Kind)
		labels[it.Label] = true
	}
	for _, want := range []string{"show", "minimize", "maximize", "external", "count", "sup"} {
		assert.True(t, labels[want], "missing keyword %q", want)
	}
}

func TestInContextOffersEnclosingStatementVariables(t *testing.T) {
	src := "a(X) :- b(X), c."
	tree := syntax.Parse([]byte(src))
	eng := semantic.NewEngine()
	eng.Run(tree, nil)
	idx := predicate.Build(tree)

	offset := len(src) - 2 // the "c" identifier, just before the terminating dot
	items := completion.InContext(tree, eng.Store(), idx, offset)

	var gotVar bool
	for _, it := range items {
		if it.Kind == completion.KindVariable && it.Label == "X" {
			gotVar = true
		}
	}
	assert.True(t, gotVar, "expected X offered as a variable completion, got %+v", items)
}

func TestInContextSkipsSoleOccurrenceUnderCursor(t *testing.T) {
	src := "a."
	tree := syntax.Parse([]byte(src))
	eng := semantic.NewEngine()
	eng.Run(tree, nil)
	idx := predicate.Build(tree)

	items := completion.InContext(tree, eng.Store(), idx, 0)
	for _, it := range items {
		assert.False(t, it.Kind == completion.KindFunction && it.Label == "a" && it.Detail == "(0 args)",
			"sole occurrence of 'a' under the cursor should not be offered as its own completion")
	}
}
