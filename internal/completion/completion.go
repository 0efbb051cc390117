// Package completion builds completion items from the keyword list, the
// enclosing statement's global variables, and the predicate index
// (spec §6, SPEC_FULL.md §4.8).
package completion

import (
	"fmt"

	"clinlint/internal/predicate"
	"clinlint/internal/semantic"
	"clinlint/internal/syntax"
)

// Kind mirrors the LSP CompletionItemKind values this server emits.
type Kind int

const (
	KindKeyword   Kind = 14
	KindVariable  Kind = 6
	KindFunction  Kind = 3
)

// Item is one completion candidate.
type Item struct {
	Label      string
	Kind       Kind
	Detail     string
	InsertText string
}

// keyword is one directive/aggregate-function keyword with its snippet
// insert form (spec §6's literal list).
type keyword struct {
	label  string
	insert string
}

var keywords = []keyword{
	{"show", "show "},
	{"minimize", "minimize"},
	{"maximize", "maximize"},
	{"minimise", "minimise"},
	{"maximise", "maximise"},
	{"external", "external "},
	{"program", "program "},
	{"const", "const "},
	{"edge", "edge"},
	{"heuristic", "heuristic"},
	{"project", "project"},
	{"script", "script"},
	{"defined", "defined"},
	{"sup", "sup"},
	{"supremum", "supremum"},
	{"inf", "inf"},
	{"infimum", "infimum"},
	{"sum", "sum"},
	{"sum+", "sum+"},
	{"count", "count"},
	{"min", "min"},
	{"max", "max"},
	{"true", "true"},
	{"false", "false"},
}

// Keywords returns the keyword completion list, offered when the
// completion request's trigger character is '#'.
func Keywords() []Item {
	out := make([]Item, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, Item{Label: k.label, Kind: KindKeyword, InsertText: k.insert})
	}
	return out
}

// InContext returns the variable and predicate completions for an
// invoked (non-'#') completion at offset: every variable reachable from
// the enclosing statement's global_vars, plus one item per (name, arity)
// in the predicate index, skipping the predicate under the cursor if it
// is its only occurrence (spec §6).
func InContext(tree *syntax.Tree, store *semantic.Store, idx *predicate.Index, offset int) []Item {
	var out []Item

	n := tree.Root().NodeAt(offset)
	if n != nil {
		stmt := n.EnclosingStatement()
		if bundle, ok := store.Get(stmt.ID()); ok {
			for _, v := range bundle.GlobalVars.Slice() {
				out = append(out, Item{Label: v, Kind: KindVariable, InsertText: v})
			}
		}
	}

	cursorName, cursorArity, hasCursor := "", 0, false
	if n != nil {
		for cur := n; cur != nil; cur = cur.Parent() {
			if (cur.Kind() == syntax.KindAtom || cur.Kind() == syntax.KindIdentifier) && cur.Text() != "" {
				cursorName, cursorArity, hasCursor = cur.Text(), 0, true
				if cur.ChildCount() > 0 {
					cursorArity = cur.Child(0).ChildCount()
				}
				break
			}
		}
	}

	for _, k := range idx.Keys() {
		occs := idx.Occurrences(k.Name, k.Arity)
		if hasCursor && k.Name == cursorName && k.Arity == cursorArity && len(occs) <= 1 {
			continue
		}
		out = append(out, Item{
			Label:      k.Name,
			Kind:       KindFunction,
			Detail:     fmt.Sprintf("(%d args)", k.Arity),
			InsertText: k.Name,
		})
	}

	return out
}
