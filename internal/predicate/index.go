// Package predicate builds the (identifier, arity) -> occurrence index
// (spec §3/§4.4), rebuilt fresh on every analysis pass.
package predicate

import "clinlint/internal/syntax"

// Location classifies where a predicate occurrence sits in its statement.
type Location int

const (
	LocationHead Location = iota
	LocationBody
	LocationCondition
)

func (l Location) String() string {
	switch l {
	case LocationHead:
		return "head"
	case LocationBody:
		return "body"
	case LocationCondition:
		return "condition"
	default:
		return "unknown"
	}
}

// Occurrence is one appearance of a predicate name/arity in the CST.
type Occurrence struct {
	NodeID    syntax.NodeID
	StartByte int
	EndByte   int
	Location  Location
}

// Key identifies a predicate by name and arity.
type Key struct {
	Name  string
	Arity int
}

// Index maps (name, arity) to every occurrence found in the current tree.
type Index struct {
	entries map[Key][]Occurrence
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[Key][]Occurrence)}
}

// Occurrences returns every occurrence recorded for (name, arity).
func (idx *Index) Occurrences(name string, arity int) []Occurrence {
	return idx.entries[Key{Name: name, Arity: arity}]
}

// Keys returns every (name, arity) pair present in the index.
func (idx *Index) Keys() []Key {
	out := make([]Key, 0, len(idx.entries))
	for k := range idx.entries {
		out = append(out, k)
	}
	return out
}

func (idx *Index) add(name string, arity int, occ Occurrence) {
	k := Key{Name: name, Arity: arity}
	idx.entries[k] = append(idx.entries[k], occ)
}

// Build walks the tree and indexes every Atom and function-shaped
// Identifier node (spec §4.4: "atom or compound-term-with-identifier").
func Build(tree *syntax.Tree) *Index {
	idx := NewIndex()
	for _, n := range tree.Root().Walk() {
		switch n.Kind() {
		case syntax.KindAtom, syntax.KindIdentifier:
			if n.Text() == "" {
				continue
			}
			loc := locationFor(n)
			for _, arity := range arities(argsOf(n)) {
				idx.add(n.Text(), arity, Occurrence{
					NodeID:    n.ID(),
					StartByte: n.StartByte(),
					EndByte:   n.EndByte(),
					Location:  loc,
				})
			}
		}
	}
	return idx
}

func argsOf(n *syntax.Node) *syntax.Node {
	if n.ChildCount() == 0 {
		return nil
	}
	return n.Child(0)
}

// arities computes every possible arity an arg-list node can present,
// accounting for pool alternatives that disagree on arg count (spec §4.4
// "each subterm contributes recursively, accounting for pools").
func arities(args *syntax.Node) []int {
	if args == nil {
		return []int{0}
	}
	if args.Kind() == syntax.KindPool {
		left := arities(args.Child(0))
		right := arities(args.Child(1))
		seen := make(map[int]struct{}, len(left)+len(right))
		var out []int
		for _, a := range append(left, right...) {
			if _, ok := seen[a]; !ok {
				seen[a] = struct{}{}
				out = append(out, a)
			}
		}
		return out
	}
	return []int{args.ChildCount()}
}

// locationFor classifies a node's occurrence by walking parent links for
// the first Body-shaped ancestor (spec §4.4).
func locationFor(n *syntax.Node) Location {
	cur := n.Parent()
	for cur != nil {
		if cur.Kind() == syntax.KindBody {
			if p := cur.Parent(); p != nil {
				if (p.Kind() == syntax.KindConditional || p.Kind() == syntax.KindAggregateElement) && p.Child(1) == cur {
					return LocationCondition
				}
			}
			return LocationBody
		}
		cur = cur.Parent()
	}
	return LocationHead
}
