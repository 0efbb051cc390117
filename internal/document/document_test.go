package document_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinlint/internal/diagnostics"
	"clinlint/internal/document"
)

func TestAnalyzeReportsUnsafeVariable(t *testing.T) {
	d := document.Open("file:///t.lp", 1, "a(X).")
	diags, err := d.Analyze(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeUnsafeVariable, diags[0].Code)
}

// TestIncrementalEditMatchesFullDocument exercises the same equivalence
// property as the engine-level test, but at the document API surface: a
// document that receives a single didChange edit must end up with the same
// diagnostics as one opened directly on the post-edit text.
func TestIncrementalEditMatchesFullDocument(t *testing.T) {
	ctx := context.Background()

	incremental := document.Open("file:///t.lp", 1, "a(X) :- b(X), c(Y).")
	_, err := incremental.Analyze(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, incremental.ApplyChange(0, 16, 0, 17, "X"))
	got, err := incremental.Analyze(ctx, 0)
	require.NoError(t, err)

	full := document.Open("file:///t2.lp", 1, "a(X) :- b(X), c(X).")
	want, err := full.Analyze(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestApplyChangeWithoutAnalyzeIsPending(t *testing.T) {
	d := document.Open("file:///t.lp", 1, "a.")
	require.NoError(t, d.ApplyChange(0, 1, 0, 1, "(X)"))

	ctx := context.Background()
	diags, err := d.Analyze(ctx, 0)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeUnsafeVariable, diags[0].Code)
}

func TestAnalyzeCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := document.Open("file:///t.lp", 1, "a(X) :- b(X).\nc(Y) :- d(Y).\n")
	_, err := d.Analyze(ctx, 0)
	assert.Error(t, err)
}

func TestGenerationAdvancesPerAnalyzeCall(t *testing.T) {
	d := document.Open("file:///t.lp", 1, "a.")
	ctx := context.Background()

	before := d.Generation()
	_, err := d.Analyze(ctx, 0)
	require.NoError(t, err)
	assert.Greater(t, d.Generation(), before)
}
