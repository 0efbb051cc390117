// Package semantic implements the attribute engine: a single post-order
// walk of a syntax.Tree that computes, per node, the variable-safety
// attribute bundle the safety checker and predicate index consume.
package semantic

import "clinlint/internal/syntax"

// VarSet is a set of variable names.
type VarSet map[string]struct{}

// NewVarSet builds a VarSet from the given names.
func NewVarSet(names ...string) VarSet {
	s := make(VarSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set.
func (s VarSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Clone returns a shallow copy.
func (s VarSet) Clone() VarSet {
	out := make(VarSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Union returns a new set containing every member of s and every other set
// passed in.
func (s VarSet) Union(others ...VarSet) VarSet {
	out := s.Clone()
	for _, o := range others {
		for k := range o {
			out[k] = struct{}{}
		}
	}
	return out
}

// Minus returns s with every member of other removed.
func (s VarSet) Minus(other VarSet) VarSet {
	out := make(VarSet, len(s))
	for k := range s {
		if !other.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Intersect returns the members present in both s and other.
func (s VarSet) Intersect(other VarSet) VarSet {
	out := make(VarSet, len(s))
	for k := range s {
		if other.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Slice returns the set's members as a sorted slice, for deterministic
// diagnostic ordering.
func (s VarSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// DepPair is one (Provided, Depended) entry feeding the safe-set fixed
// point (spec §4.2/§4.3).
type DepPair struct {
	Provide VarSet
	Depend  VarSet
}

// TermKind classifies a term node's shape (spec §3).
type TermKind int

const (
	TermUnknown TermKind = iota
	TermIdentifier
	TermConstant
	TermVariable
)

// TermAttr is the tagged record the data model assigns to term nodes.
// Value is populated only when Kind is TermConstant.
type TermAttr struct {
	Kind  TermKind
	Op    syntax.Op
	Value map[int]struct{}
	Start int
	End   int
}

// SpecialLiteralKind tags the inner-scope shape a SpecialLiteral records
// (spec §3).
type SpecialLiteralKind int

const (
	SpecialNormal SpecialLiteralKind = iota
	SpecialConjunction
	SpecialAggregateElement
	SpecialDisjunction
)

// SpecialLiteral describes an inner scope whose safety is checked against
// the enclosing statement's global safe set, projected to the variables it
// introduces (spec §4.3 "Local safe sets").
type SpecialLiteral struct {
	ID              syntax.NodeID
	Kind            SpecialLiteralKind
	LocalDependency []DepPair
}

// Bundle is the attribute record the semantic store keys by node id.
type Bundle struct {
	Vars            VarSet
	GlobalVars      VarSet
	Provide         VarSet
	Depend          VarSet
	Dependencies    []DepPair
	Term            TermAttr
	SpecialLiterals []SpecialLiteral
}

func emptyBundle() *Bundle {
	return &Bundle{
		Vars:       VarSet{},
		GlobalVars: VarSet{},
		Provide:    VarSet{},
		Depend:     VarSet{},
	}
}
