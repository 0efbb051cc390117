package semantic

import "clinlint/internal/syntax"

// combineBinaryTerm applies the addition/subtraction/multiplication/
// division provide-and-value rules for `a ⊕ b` (spec §4.2 "Term /
// constant / variable / identifier").
func combineBinaryTerm(op syntax.Op, a, b *Bundle) *Bundle {
	out := emptyBundle()
	out.Vars = a.Vars.Union(b.Vars)
	out.Term.Op = op

	aConst := a.Term.Kind == TermConstant
	bConst := b.Term.Kind == TermConstant

	switch op {
	case syntax.OpAdd, syntax.OpSub:
		switch {
		case aConst && !bConst:
			out.Provide = b.Provide
		case bConst && !aConst:
			out.Provide = a.Provide
		default:
			out.Provide = VarSet{}
		}
	case syntax.OpMul:
		switch {
		case aConst && !bConst && !hasZero(a.Term.Value):
			out.Provide = b.Provide
		case bConst && !aConst && !hasZero(b.Term.Value):
			out.Provide = a.Provide
		default:
			out.Provide = VarSet{}
		}
	case syntax.OpDiv:
		out.Provide = VarSet{}
	default:
		out.Provide = VarSet{}
	}
	out.Depend = out.Vars.Minus(out.Provide)

	if aConst && bConst {
		out.Term.Kind = TermConstant
		out.Term.Value = evalArith(op, a.Term.Value, b.Term.Value)
	} else {
		out.Term.Kind = TermUnknown
	}
	return out
}

func hasZero(vals map[int]struct{}) bool {
	_, ok := vals[0]
	return ok
}

func evalArith(op syntax.Op, a, b map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{})
	for x := range a {
		for y := range b {
			switch op {
			case syntax.OpAdd:
				out[x+y] = struct{}{}
			case syntax.OpSub:
				out[x-y] = struct{}{}
			case syntax.OpMul:
				out[x*y] = struct{}{}
			case syntax.OpDiv:
				if y != 0 {
					out[x/y] = struct{}{}
				}
			}
		}
	}
	return out
}

// combineUnaryTerm applies unary minus: it passes provide/depend through
// unchanged and negates the constant value set, if any.
func combineUnaryTerm(operand *Bundle) *Bundle {
	out := emptyBundle()
	out.Vars = operand.Vars.Clone()
	out.Provide = operand.Provide.Clone()
	out.Depend = operand.Depend.Clone()
	out.Term.Op = syntax.OpSub
	if operand.Term.Kind == TermConstant {
		out.Term.Kind = TermConstant
		negated := make(map[int]struct{}, len(operand.Term.Value))
		for v := range operand.Term.Value {
			negated[-v] = struct{}{}
		}
		out.Term.Value = negated
	} else {
		out.Term.Kind = TermUnknown
	}
	return out
}
