package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinlint/internal/buffer"
)

func TestPositionToByteRoundTrip(t *testing.T) {
	b := buffer.New("a(X).\nb(Y).\n")

	cases := []struct {
		line, col int
		wantByte  int
	}{
		{0, 0, 0},
		{0, 5, 5},
		{1, 0, 6},
		{1, 4, 10},
	}
	for _, tc := range cases {
		got := b.PositionToByte(tc.line, tc.col)
		assert.Equal(t, tc.wantByte, got, "line=%d col=%d", tc.line, tc.col)

		line, col := b.ByteToPosition(got)
		assert.Equal(t, tc.line, line)
		assert.Equal(t, tc.col, col)
	}
}

func TestApplyRangeEditReplacesSpan(t *testing.T) {
	b := buffer.New("a(X) :- b(X).")

	edit, err := b.ApplyRangeEdit(0, 2, 0, 3, "Y")
	require.NoError(t, err)
	assert.Equal(t, "a(Y) :- b(X).", b.Text())
	assert.Equal(t, 2, edit.StartByte)
	assert.Equal(t, 3, edit.OldEndByte)
	assert.Equal(t, 3, edit.NewEndByte)
}

func TestApplyRangeEditRejectsInvertedRange(t *testing.T) {
	b := buffer.New("a.")
	_, err := b.ApplyRangeEdit(0, 1, 0, 0, "x")
	assert.Error(t, err)
}

func TestLineCountCountsLineAfterTrailingNewline(t *testing.T) {
	assert.Equal(t, 1, buffer.New("a.").LineCount())
	assert.Equal(t, 2, buffer.New("a.\nb.").LineCount())
	assert.Equal(t, 2, buffer.New("a.\n").LineCount())
}
