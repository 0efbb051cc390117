package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinlint/internal/syntax"
)

func TestNewDirtySetMergesOverlappingSpans(t *testing.T) {
	d := syntax.NewDirtySet([][2]int{{10, 20}, {15, 25}, {40, 50}})
	assert.False(t, d.Empty())

	assert.True(t, d.AnyOverlap(18, 22))
	assert.True(t, d.AnyOverlap(0, 11))
	assert.True(t, d.AnyOverlap(45, 60))
	assert.False(t, d.AnyOverlap(25, 40))
	assert.False(t, d.AnyOverlap(60, 70))
}

func TestEmptyDirtySetNeverOverlaps(t *testing.T) {
	d := syntax.NewDirtySet(nil)
	assert.True(t, d.Empty())
	assert.False(t, d.AnyOverlap(0, 1000))
}

func TestAnyOverlapIsHalfOpen(t *testing.T) {
	d := syntax.NewDirtySet([][2]int{{10, 20}})
	assert.False(t, d.AnyOverlap(0, 10), "a range ending exactly at the dirty start should not overlap")
	assert.False(t, d.AnyOverlap(20, 30), "a range starting exactly at the dirty end should not overlap")
	assert.True(t, d.AnyOverlap(19, 20))
	assert.True(t, d.AnyOverlap(9, 11))
}
