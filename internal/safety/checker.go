// Package safety implements the variable-safety fixed-point procedure
// (spec §4.3): given a statement's dependency pairs and global variables,
// it reports which variable names are unsafe.
package safety

import "clinlint/internal/semantic"

// fixedPoint runs the safe-set closure: starting from an empty safe set,
// repeatedly admits any pair's Provide once its Depend is a subset of the
// current safe set, until a full pass admits nothing.
func fixedPoint(dep []semantic.DepPair) semantic.VarSet {
	safe := semantic.VarSet{}
	remaining := make([]semantic.DepPair, len(dep))
	copy(remaining, dep)

	for {
		progressed := false
		next := remaining[:0:0]
		for _, pair := range remaining {
			if isSubset(pair.Depend, safe) {
				for k := range pair.Provide {
					if !safe.Contains(k) {
						safe[k] = struct{}{}
						progressed = true
					}
				}
				continue
			}
			next = append(next, pair)
		}
		remaining = next
		if !progressed {
			break
		}
	}
	return safe
}

func isSubset(a, b semantic.VarSet) bool {
	for k := range a {
		if !b.Contains(k) {
			return false
		}
	}
	return true
}

// restrictToGlobal projects each pair onto globalVars (pt = provide ∩
// global, dt = depend ∩ global) and keeps only the pairs where that
// projection is non-empty (spec §4.3 step 1; reference
// get_dependencies_only_occuring_in_set, statement_analysis.rs:94-106).
// Projecting before the fixed point, rather than keeping matching pairs
// whole, is what keeps aggregate/condition-local variables like the X in
// `N = #count{X : b(X)}` out of the global safe-set computation entirely.
func restrictToGlobal(dep []semantic.DepPair, global semantic.VarSet) []semantic.DepPair {
	out := make([]semantic.DepPair, 0, len(dep))
	for _, pair := range dep {
		pt := pair.Provide.Intersect(global)
		dt := pair.Depend.Intersect(global)
		if len(pt) == 0 && len(dt) == 0 {
			continue
		}
		out = append(out, semantic.DepPair{Provide: pt, Depend: dt})
	}
	return out
}

// mentioned collects every variable name appearing anywhere in dep.
func mentioned(dep []semantic.DepPair) semantic.VarSet {
	out := semantic.VarSet{}
	for _, pair := range dep {
		out = out.Union(pair.Provide, pair.Depend)
	}
	return out
}

// Result is one statement's safety-check outcome.
type Result struct {
	UnsafeGlobal semantic.VarSet
	UnsafeLocal  semantic.VarSet
	Unsafe       semantic.VarSet // UnsafeGlobal ∪ UnsafeLocal
}

// CheckStatement runs the global and local fixed points for one statement
// (spec §4.3).
func CheckStatement(dependencies []semantic.DepPair, globalVars semantic.VarSet, special []semantic.SpecialLiteral) Result {
	dep := restrictToGlobal(dependencies, globalVars)
	v := mentioned(dep)
	safe := fixedPoint(dep)
	unsafeGlobal := v.Minus(safe)

	unsafeLocal := semantic.VarSet{}
	for _, sl := range special {
		localDep := projectLocal(sl.LocalDependency, globalVars)
		localV := mentioned(localDep)
		localSafe := fixedPoint(localDep)
		for name := range localV.Minus(localSafe) {
			if !unsafeGlobal.Contains(name) {
				unsafeLocal[name] = struct{}{}
			}
		}
	}

	return Result{
		UnsafeGlobal: unsafeGlobal,
		UnsafeLocal:  unsafeLocal,
		Unsafe:       unsafeGlobal.Union(unsafeLocal),
	}
}

// projectLocal restricts a SpecialLiteral's local dependency pairs to the
// variables it introduces beyond the global ones: every pair is kept, with
// global_vars (already handled by the outer statement) removed from both
// its Provide and its Depend, so pairs depending only on globals still
// admit their provide (spec §4.3 "project using V \ global_vars").
func projectLocal(dep []semantic.DepPair, global semantic.VarSet) []semantic.DepPair {
	out := make([]semantic.DepPair, 0, len(dep))
	for _, pair := range dep {
		out = append(out, semantic.DepPair{
			Provide: pair.Provide.Minus(global),
			Depend:  pair.Depend.Minus(global),
		})
	}
	return out
}
