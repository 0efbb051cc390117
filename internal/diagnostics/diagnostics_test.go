package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinlint/internal/buffer"
	"clinlint/internal/diagnostics"
	"clinlint/internal/safety"
	"clinlint/internal/semantic"
	"clinlint/internal/syntax"
)

func TestFormatSortsByPosition(t *testing.T) {
	buf := buffer.New("a(X) b(Y).\n")

	errs := []syntax.ErrorRecord{
		{StartByte: 5, EndByte: 6},
	}
	unsafe := []diagnostics.UnsafeOccurrence{
		{Name: "X", StartByte: 2, EndByte: 3},
	}

	out := diagnostics.Format(buf, errs, nil, unsafe, 0)
	if assert.Len(t, out, 2) {
		assert.Equal(t, diagnostics.CodeUnsafeVariable, out[0].Code)
		assert.Equal(t, diagnostics.CodeUnknownParseState, out[1].Code)
	}
}

func TestFormatCapsAtMaxProblems(t *testing.T) {
	buf := buffer.New("a(X) b(Y) c(Z).\n")

	unsafe := []diagnostics.UnsafeOccurrence{
		{Name: "X", StartByte: 2, EndByte: 3},
		{Name: "Y", StartByte: 7, EndByte: 8},
		{Name: "Z", StartByte: 12, EndByte: 13},
	}

	out := diagnostics.Format(buf, nil, nil, unsafe, 2)
	assert.Len(t, out, 2)
}

func TestFormatUsesMissingTokenMessage(t *testing.T) {
	buf := buffer.New("a(b.")

	missing := []syntax.MissingRecord{
		{StartByte: 3, EndByte: 3, Expected: syntax.TokRParen},
	}

	out := diagnostics.Format(buf, nil, missing, nil, 0)
	if assert.Len(t, out, 1) {
		assert.Equal(t, diagnostics.CodeExpectedMissingTok, out[0].Code)
		assert.Contains(t, out[0].Message, syntax.TokRParen.String())
	}
}

func TestOccurrencesForExpandsEachRecordedRange(t *testing.T) {
	result := safety.Result{
		Unsafe: semantic.NewVarSet("X"),
	}
	locations := map[string][]semantic.Range{
		"X": {{StartByte: 2, EndByte: 3}, {StartByte: 10, EndByte: 11}},
	}

	out := diagnostics.OccurrencesFor(result, locations)
	assert.Len(t, out, 2)
	for _, occ := range out {
		assert.Equal(t, "X", occ.Name)
	}
}

func TestOccurrencesForSkipsNamesWithoutLocations(t *testing.T) {
	result := safety.Result{
		Unsafe: semantic.NewVarSet("X"),
	}
	out := diagnostics.OccurrencesFor(result, map[string][]semantic.Range{})
	assert.Empty(t, out)
}
