package semantic

import "clinlint/internal/syntax"

// Engine runs the attribute engine's post-order walk (spec §4.2). It holds
// the semantic store across passes so unaffected nodes can reuse their
// cached bundle.
type Engine struct {
	store *Store
}

// NewEngine creates an Engine with a fresh, empty semantic store.
func NewEngine() *Engine {
	return &Engine{store: NewStore()}
}

// Store returns the engine's semantic store.
func (e *Engine) Store() *Store { return e.store }

// Run performs one pass over tree. dirty may be nil, meaning every node is
// treated as needing recomputation (the first analysis of a document).
func (e *Engine) Run(tree *syntax.Tree, dirty *syntax.DirtySet) {
	e.store.BeginPass()
	nodes := tree.Root().Walk() // post-order: children before parents
	for _, n := range nodes {
		e.store.Visit(n.ID())
		if n.Kind() == syntax.KindVariable {
			e.store.RecordVarLocation(n.Text(), Range{StartByte: n.StartByte(), EndByte: n.EndByte()})
		}

		_, cached := e.store.Get(n.ID())
		overlap := dirty == nil || dirty.AnyOverlap(n.StartByte(), n.EndByte())
		if cached && !overlap {
			continue
		}

		b := e.computeKind(n)
		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			if cb, ok := e.store.Get(child.ID()); ok {
				b.SpecialLiterals = append(b.SpecialLiterals, cb.SpecialLiterals...)
			}
		}
		e.store.Set(n.ID(), b)
	}
	e.store.FinishPass()
}

// attr fetches the cached bundle for n, or an empty bundle if n is nil or
// uncached (nil children occur for absent optional slots, e.g. an
// aggregate with no left bound).
func (e *Engine) attr(n *syntax.Node) *Bundle {
	if n == nil {
		return emptyBundle()
	}
	if b, ok := e.store.Get(n.ID()); ok {
		return b
	}
	return emptyBundle()
}

func (e *Engine) computeKind(n *syntax.Node) *Bundle {
	switch n.Kind() {
	case syntax.KindVariable:
		return e.computeVariable(n)
	case syntax.KindConstant:
		return e.computeConstant(n)
	case syntax.KindIdentifier:
		return e.computeIdentifier(n)
	case syntax.KindBinaryTerm:
		return e.computeBinaryTerm(n)
	case syntax.KindUnaryTerm:
		return e.computeUnaryTerm(n)
	case syntax.KindTermvec, syntax.KindArgvec:
		return e.computeList(n)
	case syntax.KindPool:
		return e.computePool(n)
	case syntax.KindAtom:
		return e.computeAtom(n)
	case syntax.KindLiteral:
		return e.computeLiteral(n)
	case syntax.KindNegatedLiteral:
		return e.computeNegatedLiteral(n)
	case syntax.KindComparison:
		return e.computeComparison(n)
	case syntax.KindBody:
		return e.computeBody(n)
	case syntax.KindConditional:
		return e.computeConditional(n)
	case syntax.KindAggregateElement:
		return e.computeAggregateElement(n)
	case syntax.KindAggregate:
		return e.computeAggregate(n)
	case syntax.KindHeadElement:
		return e.computeHeadElement(n)
	case syntax.KindDisjunction:
		return e.computeDisjunction(n)
	case syntax.KindOptElement:
		return e.computeOptElement(n)
	case syntax.KindWeightTuple:
		return e.computeList(n)
	case syntax.KindFact:
		return e.computeFact(n)
	case syntax.KindRule:
		return e.computeRule(n)
	case syntax.KindConstraint:
		return e.computeConstraint(n)
	case syntax.KindShow:
		return e.computeShow(n)
	case syntax.KindExternal:
		return e.computeExternal(n)
	case syntax.KindWeakConstraint:
		return e.computeWeakConstraint(n)
	case syntax.KindOptimize:
		return e.computeOptimize(n)
	default: // Program, ErrorNode, MissingToken, Punctuation
		return emptyBundle()
	}
}

func (e *Engine) childBundles(n *syntax.Node) []*Bundle {
	out := make([]*Bundle, 0, n.ChildCount())
	for i := 0; i < n.ChildCount(); i++ {
		out = append(out, e.attr(n.Child(i)))
	}
	return out
}

func (e *Engine) computeVariable(n *syntax.Node) *Bundle {
	out := emptyBundle()
	name := n.Text()
	out.Vars = NewVarSet(name)
	out.GlobalVars = out.Vars
	out.Provide = NewVarSet(name)
	out.Depend = VarSet{}
	out.Term = TermAttr{Kind: TermVariable, Start: n.StartByte(), End: n.EndByte()}
	return out
}

func (e *Engine) computeConstant(n *syntax.Node) *Bundle {
	out := emptyBundle()
	out.Term = TermAttr{Kind: TermConstant, Start: n.StartByte(), End: n.EndByte()}
	if v, ok := parseInt(n.Text()); ok {
		out.Term.Value = map[int]struct{}{v: {}}
	}
	return out
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// computeIdentifier implements "Function application f(t): term kind
// becomes Identifier; provide is passed from the argument" (spec §4.2). A
// zero-arity identifier is a plain symbolic constant: no variables.
func (e *Engine) computeIdentifier(n *syntax.Node) *Bundle {
	out := emptyBundle()
	out.Term = TermAttr{Kind: TermIdentifier, Start: n.StartByte(), End: n.EndByte()}
	if n.ChildCount() > 0 {
		args := e.attr(n.Child(0))
		out.Vars = args.Vars
		out.Provide = args.Provide
		out.Depend = args.Depend
	}
	out.GlobalVars = out.Vars
	return out
}

func (e *Engine) computeBinaryTerm(n *syntax.Node) *Bundle {
	a, b := e.attr(n.Child(0)), e.attr(n.Child(1))
	out := combineBinaryTerm(n.Op(), a, b)
	out.GlobalVars = out.Vars
	return out
}

func (e *Engine) computeUnaryTerm(n *syntax.Node) *Bundle {
	operand := e.attr(n.Child(0))
	out := combineUnaryTerm(operand)
	out.GlobalVars = out.Vars
	return out
}

// computeList handles Termvec/Argvec (non-pooled branch)/WeightTuple: a
// comma-separated list whose provide/depend follow the Termvec rule (spec
// §4.2 "Termvec").
func (e *Engine) computeList(n *syntax.Node) *Bundle {
	out := combineTermvec(e.childBundles(n))
	out.GlobalVars = out.Vars
	return out
}

func (e *Engine) computePool(n *syntax.Node) *Bundle {
	a, b := e.attr(n.Child(0)), e.attr(n.Child(1))
	out := combinePool(a, b)
	out.GlobalVars = out.Vars
	return out
}

func (e *Engine) computeAtom(n *syntax.Node) *Bundle {
	var args *Bundle
	if n.ChildCount() > 0 {
		args = e.attr(n.Child(0))
	}
	out := atomBundle(args)
	out.GlobalVars = out.Vars
	return out
}

func (e *Engine) computeLiteral(n *syntax.Node) *Bundle {
	atom := e.attr(n.Child(0))
	out := emptyBundle()
	out.Vars = atom.Vars
	out.GlobalVars = atom.Vars
	out.Provide = atom.Provide
	out.Depend = atom.Depend
	out.Dependencies = atom.Dependencies
	return out
}

func (e *Engine) computeNegatedLiteral(n *syntax.Node) *Bundle {
	inner := e.attr(n.Child(0))
	out := negatedDependencies(inner)
	out.GlobalVars = out.Vars
	return out
}

func (e *Engine) computeComparison(n *syntax.Node) *Bundle {
	t1, t2 := e.attr(n.Child(0)), e.attr(n.Child(1))
	out := comparisonBundle(n.Op(), t1, t2)
	out.GlobalVars = out.Vars
	return out
}

// computeBody implements the body-list rule (spec §4.2). Unlike Vars,
// global_vars is not recomputed from scratch here: aggregate, conjunction,
// and disjunction children already restrict their own global_vars to
// exclude condition/aggregate-local variables, so the body's global_vars is
// the union of its children's global_vars, not of their (wider) Vars
// (reference check_global_vars, statement_semantic.rs).
func (e *Engine) computeBody(n *syntax.Node) *Bundle {
	children := e.childBundles(n)
	out := bodyListBundle(children)
	globalVars := VarSet{}
	for _, c := range children {
		globalVars = globalVars.Union(c.GlobalVars)
	}
	out.GlobalVars = globalVars
	return out
}

// computeConditional implements "Conjunction l : c" (spec §4.2). A
// conditional nested directly under a HeadElement is instead the
// disjunctive-head shape ("Head disjunction ... elements carry
// SpecialLiteral{Disjunction}"); the tag only affects how the safety
// checker labels the finding, not the dependency math, so the distinction
// is made here by parent kind rather than duplicating the combinator.
func (e *Engine) computeConditional(n *syntax.Node) *Bundle {
	l, c := e.attr(n.Child(0)), e.attr(n.Child(1))
	kind := SpecialConjunction
	if p := n.Parent(); p != nil && p.Kind() == syntax.KindHeadElement {
		kind = SpecialDisjunction
	}
	return conjunctionBundle(n.ID(), kind, l, c)
}

func (e *Engine) computeAggregateElement(n *syntax.Node) *Bundle {
	head := e.attr(n.Child(0))
	var cond *Bundle
	if n.ChildCount() > 1 {
		cond = e.attr(n.Child(1))
	}
	out := emptyBundle()
	out.Vars = head.Vars
	if cond != nil {
		out.Vars = out.Vars.Union(cond.Vars)
	}
	out.GlobalVars = out.Vars
	out.SpecialLiterals = []SpecialLiteral{{
		ID:              n.ID(),
		Kind:            SpecialAggregateElement,
		LocalDependency: aggregateElementLocalDep(head, cond),
	}}
	return out
}

// computeAggregate implements "Body aggregate with bounds" (spec §4.2).
func (e *Engine) computeAggregate(n *syntax.Node) *Bundle {
	leftB := e.attr(n.AggregateLeftBound())
	rightB := e.attr(n.AggregateRightBound())
	elemsB := e.attr(n.AggregateElements())
	leftOp, hasLeft, rightOp, hasRight := n.AggregateBoundOps()

	out := emptyBundle()
	aggrVars := elemsB.Vars
	vars := aggrVars
	if hasLeft {
		vars = vars.Union(leftB.Vars)
	}
	if hasRight {
		vars = vars.Union(rightB.Vars)
	}
	out.Vars = vars
	out.GlobalVars = leftB.Vars.Union(rightB.Vars)
	out.Provide = VarSet{}
	out.Depend = out.Vars

	isAssignment := hasLeft != hasRight // exactly one bound
	var assignOp syntax.Op
	var boundTerm *Bundle
	if hasLeft && !hasRight {
		assignOp, boundTerm = leftOp, leftB
	} else if hasRight && !hasLeft {
		assignOp, boundTerm = rightOp, rightB
	}

	if isAssignment && assignOp == syntax.OpEq {
		out.Dependencies = []DepPair{
			{Provide: boundTerm.Provide, Depend: aggrVars},
			{Provide: VarSet{}, Depend: boundTerm.Depend},
		}
	} else {
		out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: vars}}
	}
	return out
}

// computeHeadElement reads the wrapped literal/conditional/aggregate's
// already-restricted GlobalVars; every non-restricting node kind sets its
// own GlobalVars equal to Vars, so this needs no kind switch.
func (e *Engine) computeHeadElement(n *syntax.Node) *Bundle {
	child := e.attr(n.Child(0))
	out := emptyBundle()
	out.Vars = child.Vars
	out.GlobalVars = child.GlobalVars
	out.Dependencies = child.Dependencies
	return out
}

func (e *Engine) computeDisjunction(n *syntax.Node) *Bundle {
	var vars, globalVars VarSet = VarSet{}, VarSet{}
	for _, c := range e.childBundles(n) {
		vars = vars.Union(c.Vars)
		globalVars = globalVars.Union(c.GlobalVars)
	}
	out := emptyBundle()
	out.Vars = vars
	out.GlobalVars = globalVars
	out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: vars}}
	return out
}

// computeOptElement implements the minimize/maximize element contract
// ("w@p, tuple : body: treated like weak-constraint tuples", spec §4.2).
func (e *Engine) computeOptElement(n *syntax.Node) *Bundle {
	tuple := e.attr(n.Child(0))
	var body *Bundle
	if n.ChildCount() > 1 {
		body = e.attr(n.Child(1))
	}
	out := emptyBundle()
	out.Vars = tuple.Vars
	if body != nil {
		out.Vars = out.Vars.Union(body.Vars)
	}
	out.GlobalVars = out.Vars
	deps := []DepPair{{Provide: VarSet{}, Depend: tuple.Vars}}
	if body != nil {
		deps = append(deps, body.Dependencies...)
	}
	out.Dependencies = deps
	return out
}

func (e *Engine) computeFact(n *syntax.Node) *Bundle {
	head := e.attr(n.Child(0))
	out := emptyBundle()
	out.Vars = head.Vars
	out.GlobalVars = head.GlobalVars
	out.Dependencies = []DepPair{{Provide: VarSet{}, Depend: head.Vars}}
	return out
}

func (e *Engine) computeRule(n *syntax.Node) *Bundle {
	head, body := e.attr(n.Child(0)), e.attr(n.Child(1))
	out := emptyBundle()
	out.Vars = head.Vars.Union(body.Vars)
	out.GlobalVars = head.GlobalVars.Union(body.GlobalVars)
	deps := []DepPair{{Provide: VarSet{}, Depend: head.Vars}}
	deps = append(deps, body.Dependencies...)
	out.Dependencies = deps
	return out
}

func (e *Engine) computeConstraint(n *syntax.Node) *Bundle {
	body := e.attr(n.Child(0))
	out := emptyBundle()
	out.Vars = body.Vars
	out.GlobalVars = body.GlobalVars
	out.Dependencies = body.Dependencies
	return out
}

func (e *Engine) computeShow(n *syntax.Node) *Bundle {
	term := e.attr(n.Child(0))
	var body *Bundle
	if n.ChildCount() > 1 {
		body = e.attr(n.Child(1))
	}
	out := emptyBundle()
	out.Vars = term.Vars
	out.GlobalVars = term.Vars
	deps := []DepPair{{Provide: VarSet{}, Depend: term.Vars}}
	if body != nil {
		out.Vars = out.Vars.Union(body.Vars)
		out.GlobalVars = out.GlobalVars.Union(body.GlobalVars)
		deps = append(deps, body.Dependencies...)
	}
	out.Dependencies = deps
	return out
}

// computeExternal mirrors computeShow ("#external a : body: same shape as
// show", spec §4.2).
func (e *Engine) computeExternal(n *syntax.Node) *Bundle {
	return e.computeShow(n)
}

func (e *Engine) computeWeakConstraint(n *syntax.Node) *Bundle {
	body, tuple := e.attr(n.Child(0)), e.attr(n.Child(1))
	out := emptyBundle()
	out.Vars = body.Vars.Union(tuple.Vars)
	out.GlobalVars = body.GlobalVars.Union(tuple.Vars)
	deps := append([]DepPair{}, body.Dependencies...)
	deps = append(deps,
		DepPair{Provide: VarSet{}, Depend: tuple.Vars},
	)
	out.Dependencies = deps
	return out
}

func (e *Engine) computeOptimize(n *syntax.Node) *Bundle {
	var vars, globalVars VarSet = VarSet{}, VarSet{}
	var deps []DepPair
	for _, el := range e.childBundles(n) {
		vars = vars.Union(el.Vars)
		globalVars = globalVars.Union(el.GlobalVars)
		deps = append(deps, el.Dependencies...)
	}
	out := emptyBundle()
	out.Vars = vars
	out.GlobalVars = globalVars
	out.Dependencies = deps
	return out
}
