package semantic

import "clinlint/internal/syntax"

// combineTermvec implements the comma-separated term-list rule: provide is
// the union of children's provide; depend is the union of children's
// depend minus the node's own provide (spec §4.2 "Termvec").
func combineTermvec(children []*Bundle) *Bundle {
	out := emptyBundle()
	var vars, provide, depend VarSet = VarSet{}, VarSet{}, VarSet{}
	for _, c := range children {
		vars = vars.Union(c.Vars)
		provide = provide.Union(c.Provide)
		depend = depend.Union(c.Depend)
	}
	out.Vars = vars
	out.Provide = provide
	out.Depend = depend.Minus(provide)
	return out
}

// combinePool implements the `a ; b` pool rule: a variable is provided
// only if every branch provides it (spec §4.2 "Argvec with pool separator").
func combinePool(a, b *Bundle) *Bundle {
	out := emptyBundle()
	out.Vars = a.Vars.Union(b.Vars)
	out.Provide = a.Provide.Intersect(b.Provide)
	out.Depend = a.Depend.Union(b.Depend).Minus(out.Provide)
	return out
}

// atomBundle builds an atom's attributes from its optional arg-list bundle
// (spec §4.2 "Atom p(args)"). args is nil for a zero-arity atom.
func atomBundle(args *Bundle) *Bundle {
	out := emptyBundle()
	if args == nil {
		out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: VarSet{}}}
		return out
	}
	out.Vars = args.Vars
	out.Provide = args.Provide
	out.Depend = args.Depend
	out.Dependencies = []DepPair{
		{Provide: args.Provide, Depend: VarSet{}},
		{Provide: VarSet{}, Depend: args.Depend},
	}
	return out
}

// negatedDependencies implements "Negated (not): dependencies = [(∅,
// vars(atom))] — negation never provides" (spec §4.2 "Literal").
func negatedDependencies(inner *Bundle) *Bundle {
	out := emptyBundle()
	out.Vars = inner.Vars
	out.Depend = inner.Vars
	out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: inner.Vars}}
	return out
}

// comparisonBundle implements the comparison contract, including the `=`
// special case that lets either side provide the other's variables (spec
// §4.2 "Comparison t1 ⊙ t2").
func comparisonBundle(op syntax.Op, t1, t2 *Bundle) *Bundle {
	out := emptyBundle()
	out.Vars = t1.Vars.Union(t2.Vars)
	out.Depend = out.Vars
	if op == syntax.OpEq {
		out.Dependencies = []DepPair{
			{Provide: t1.Provide, Depend: t2.Vars},
			{Provide: t2.Provide, Depend: t1.Vars},
			{Provide: VarSet{}, Depend: t1.Depend.Union(t2.Depend)},
		}
	} else {
		out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: out.Vars}}
	}
	return out
}

// bodyListBundle concatenates the dependencies of a comma-separated list
// of literals/conjunctions/aggregates (spec §4.2 "Body list").
func bodyListBundle(children []*Bundle) *Bundle {
	out := emptyBundle()
	var vars VarSet = VarSet{}
	var deps []DepPair
	for _, c := range children {
		vars = vars.Union(c.Vars)
		deps = append(deps, c.Dependencies...)
	}
	out.Vars = vars
	out.Dependencies = deps
	return out
}

// conjunctionBundle implements "Conjunction l : c" (spec §4.2): the node's
// own dependencies are a single depend-everything pair, its global_vars
// exclude the condition's variables, and it records a SpecialLiteral whose
// local_dependency lets the safety checker verify the inner scope under
// the enclosing statement's global safe set.
func conjunctionBundle(id syntax.NodeID, kind SpecialLiteralKind, l, c *Bundle) *Bundle {
	out := emptyBundle()
	out.Vars = l.Vars.Union(c.Vars)
	out.GlobalVars = l.Vars.Minus(c.Vars)
	out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: out.Vars}}

	local := make([]DepPair, 0, 1+len(c.Dependencies))
	local = append(local, DepPair{Provide: VarSet{}, Depend: l.Vars})
	local = append(local, c.Dependencies...)
	out.SpecialLiterals = []SpecialLiteral{{ID: id, Kind: kind, LocalDependency: local}}
	return out
}

// aggregateElementLocalDep implements "local_dependency = [(∅,
// vars(terms))] ++ dependencies(condition)" (spec §4.2 "Body aggregate").
func aggregateElementLocalDep(terms *Bundle, cond *Bundle) []DepPair {
	out := []DepPair{{Provide: VarSet{}, Depend: terms.Vars}}
	if cond != nil {
		out = append(out, cond.Dependencies...)
	}
	return out
}
