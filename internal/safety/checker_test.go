package safety_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinlint/internal/diagnostics"
	"clinlint/internal/document"
)

// unsafeCount runs a full document analysis over src and counts the
// UnsafeVariable diagnostics emitted, the literal metric spec §8's
// scenario table commits to ("the diagnostic count is the number of
// UnsafeVariable diagnostics emitted").
func unsafeCount(t *testing.T, src string) int {
	t.Helper()
	d := document.Open("file:///scenario.lp", 1, src)
	diags, err := d.Analyze(context.Background(), 0)
	require.NoError(t, err)

	n := 0
	for _, diag := range diags {
		if diag.Code == diagnostics.CodeUnsafeVariable {
			n++
		}
	}
	return n
}

func TestSafetyScenarios(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		expected int
		atLeast  bool
	}{
		{name: "positive body binds head", src: "a :- b.", expected: 0},
		{name: "fact with unbound variable", src: "a(X).", expected: 1},
		{name: "head variable not in body", src: "a(X) :- b.", expected: 1},
		{name: "head variable bound by body", src: "a(X) :- b(X).", expected: 0},
		{name: "negated body literal never binds", src: "a :- not b(X).", expected: 1},
		{name: "negated head, positive body binds", src: "not a(X) :- b(X).", expected: 0},
		{name: "bare choice unbound", src: "{a(X)}.", expected: 1},
		{name: "choice element condition binds", src: "{a(X) : b(X)}.", expected: 0},
		{name: "choice head, body binds", src: "{a(X)} :- b(X).", expected: 0},
		{name: "conjunction in body doesn't bind head", src: "{a(X)} :- a : b(X).", expected: 1, atLeast: true},
		{name: "conjunction local binding doesn't escape", src: "a :- a(Y) : b(X).", expected: 0},
		{name: "negated conjunction literal unsafe", src: "a :- not a(Y) : b(X).", expected: 1},
		{name: "show conjunction unbound", src: "#show X : a.", expected: 1},
		{name: "show conjunction bound", src: "#show X : a(X).", expected: 0},
		{name: "aggregate variable escapes unsafe", src: "a(X) :- N = #count{X : b(X)}.", expected: 1, atLeast: true},
		{name: "aggregate result only, safe", src: "a :- N = #count{X : b(X)}.", expected: 0},
		{name: "multiplication by zero doesn't bind", src: "a(X) :- a(X*0).", expected: 1, atLeast: true},
		{name: "addition binds", src: "a(X) :- a(X+1).", expected: 0},
		{name: "negated inequality transitively safe", src: "a(X) :- a(Y), not Y != X.", expected: 0},
		{name: "weak constraint unbound weight var", src: ":~ a(X). [Y]", expected: 1},
		{name: "weak constraint bound weight var", src: ":~ a(X). [X]", expected: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := unsafeCount(t, tc.src)
			if tc.atLeast {
				assert.GreaterOrEqual(t, got, tc.expected, "src=%q", tc.src)
				return
			}
			assert.Equal(t, tc.expected, got, "src=%q", tc.src)
		})
	}
}

func TestSyntaxScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diagnostics.Code
	}{
		{name: "unexpected token after atom", src: "a b.", code: diagnostics.CodeUnknownParseState},
		{name: "missing terminating dot", src: "a. d c :- a.", code: diagnostics.CodeExpectedDot},
		{name: "unclosed argument list", src: "a(b.", code: diagnostics.CodeExpectedMissingTok},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := document.Open("file:///scenario.lp", 1, tc.src)
			diags, err := d.Analyze(context.Background(), 0)
			require.NoError(t, err)

			count := 0
			for _, diag := range diags {
				if diag.Code == tc.code {
					count++
				}
			}
			assert.Equal(t, 1, count, "expected exactly one %v diagnostic for %q, got diagnostics: %+v", tc.code, tc.src, diags)
		})
	}
}
