package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinlint/internal/semantic"
)

func vs(names ...string) semantic.VarSet { return semantic.NewVarSet(names...) }

func TestFixedPointIsAFixedPoint(t *testing.T) {
	// X depends on nothing (provided outright); Y depends on X; Z depends on
	// a name that never gets provided, so Z never enters the safe set.
	dep := []semantic.DepPair{
		{Provide: vs("X"), Depend: vs()},
		{Provide: vs("Y"), Depend: vs("X")},
		{Provide: vs("Z"), Depend: vs("W")},
	}

	safe := fixedPoint(dep)
	assert.True(t, safe.Contains("X"))
	assert.True(t, safe.Contains("Y"))
	assert.False(t, safe.Contains("Z"))

	// Running the closure again over the same input must not grow the set
	// (spec §8: "applying one more round of the safe-set procedure yields
	// the same set").
	again := fixedPoint(dep)
	assert.Equal(t, safe, again)
}

func TestFixedPointOrderIndependence(t *testing.T) {
	forward := []semantic.DepPair{
		{Provide: vs("A"), Depend: vs()},
		{Provide: vs("B"), Depend: vs("A")},
		{Provide: vs("C"), Depend: vs("B")},
	}
	backward := []semantic.DepPair{forward[2], forward[1], forward[0]}

	assert.Equal(t, fixedPoint(forward), fixedPoint(backward))
}

func TestRestrictToGlobalDropsUnrelatedPairs(t *testing.T) {
	dep := []semantic.DepPair{
		{Provide: vs("X"), Depend: vs()},
		{Provide: vs("Local"), Depend: vs("Other")},
	}
	global := vs("X")

	restricted := restrictToGlobal(dep, global)
	assert.Len(t, restricted, 1)
	assert.True(t, restricted[0].Provide.Contains("X"))
}

func TestProjectLocalSeedsFromGlobal(t *testing.T) {
	// A local dependency pair that only depends on an already-global
	// (outer-safe) variable should have that dependency stripped so the
	// local fixed point can still admit its Provide.
	dep := []semantic.DepPair{
		{Provide: vs("X"), Depend: vs("G")},
	}
	global := vs("G")

	projected := projectLocal(dep, global)
	assert.False(t, projected[0].Depend.Contains("G"))
	assert.True(t, fixedPoint(projected).Contains("X"))
}

func TestCheckStatementUnsafeUnion(t *testing.T) {
	dependencies := []semantic.DepPair{
		{Provide: vs(), Depend: vs("X")}, // X mentioned, never provided
	}
	global := vs("X")

	result := CheckStatement(dependencies, global, nil)
	assert.True(t, result.Unsafe.Contains("X"))
	assert.True(t, result.UnsafeGlobal.Contains("X"))
	assert.False(t, result.UnsafeLocal.Contains("X"))
}
