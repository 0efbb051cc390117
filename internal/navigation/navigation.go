// Package navigation answers go-to-definition and find-references queries
// as thin projections over the predicate index (spec §6, SPEC_FULL.md §4.8).
package navigation

import (
	"clinlint/internal/predicate"
	"clinlint/internal/syntax"
)

// PredicateUnderCursor returns the name and arity of the predicate
// occurrence at offset, if the node at that position is an Atom or
// function-shaped Identifier.
func PredicateUnderCursor(tree *syntax.Tree, offset int) (name string, arity int, ok bool) {
	n := tree.Root().NodeAt(offset)
	if n == nil {
		return "", 0, false
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Kind() == syntax.KindAtom || cur.Kind() == syntax.KindIdentifier {
			if cur.Text() == "" {
				continue
			}
			args := 0
			if cur.ChildCount() > 0 {
				args = cur.Child(0).ChildCount()
			}
			return cur.Text(), args, true
		}
	}
	return "", 0, false
}

// Definitions returns the Head occurrences of (name, arity) — the
// `definition` response (spec §6: "returns occurrences with location =
// Head for the predicate under the cursor").
func Definitions(idx *predicate.Index, name string, arity int) []predicate.Occurrence {
	var out []predicate.Occurrence
	for _, occ := range idx.Occurrences(name, arity) {
		if occ.Location == predicate.LocationHead {
			out = append(out, occ)
		}
	}
	return out
}

// References returns the Body and Condition occurrences of (name, arity)
// — the `references` response (spec §6: "location ∈ {Body, Condition}").
func References(idx *predicate.Index, name string, arity int) []predicate.Occurrence {
	var out []predicate.Occurrence
	for _, occ := range idx.Occurrences(name, arity) {
		if occ.Location == predicate.LocationBody || occ.Location == predicate.LocationCondition {
			out = append(out, occ)
		}
	}
	return out
}
