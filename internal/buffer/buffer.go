// Package buffer holds a document's current source text and converts
// line/column positions to byte offsets so the parse driver can translate
// LSP range edits into byte-range deltas.
package buffer

import (
	"fmt"
)

// Edit is a single byte-range delta against the buffer's previous content,
// in the shape the parse driver needs to shift the prior tree (spec §4.1).
type Edit struct {
	StartByte    int
	OldEndByte   int
	NewEndByte   int
	StartLine    int
	StartCol     int
	OldEndLine   int
	OldEndCol    int
	NewEndLine   int
	NewEndCol    int
}

// Buffer is a flat-chunked rope: the document is small enough in practice
// (single ASP source files) that a byte slice plus a line-offset index
// gives logarithmic line/column<->byte conversion without the bookkeeping
// of a balanced tree.
type Buffer struct {
	text        []byte
	lineOffsets []int // byte offset of the start of each line; lineOffsets[0] == 0
}

// New creates a Buffer over the given initial content.
func New(text string) *Buffer {
	b := &Buffer{text: []byte(text)}
	b.reindex()
	return b
}

func (b *Buffer) reindex() {
	b.lineOffsets = b.lineOffsets[:0]
	b.lineOffsets = append(b.lineOffsets, 0)
	for i, c := range b.text {
		if c == '\n' {
			b.lineOffsets = append(b.lineOffsets, i+1)
		}
	}
}

// Bytes returns the current content. The returned slice must not be mutated.
func (b *Buffer) Bytes() []byte { return b.text }

// Text returns the current content as a string.
func (b *Buffer) Text() string { return string(b.text) }

// Len returns the content length in bytes.
func (b *Buffer) Len() int { return len(b.text) }

// LineCount returns the number of lines (a trailing newline starts a new,
// empty last line; an empty document has one line).
func (b *Buffer) LineCount() int { return len(b.lineOffsets) }

// PositionToByte converts a zero-based (line, column-in-UTF8-bytes)
// position to a byte offset, clamping to the document's bounds.
func (b *Buffer) PositionToByte(line, col int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(b.lineOffsets) {
		return len(b.text)
	}
	start := b.lineOffsets[line]
	end := len(b.text)
	if line+1 < len(b.lineOffsets) {
		end = b.lineOffsets[line+1] - 1 // exclude the newline itself
		if end < start {
			end = start
		}
	}
	off := start + col
	if off > end {
		off = end
	}
	if off < start {
		off = start
	}
	return off
}

// ByteToPosition converts a byte offset to a zero-based (line, column)
// position via binary search over the line-offset index.
func (b *Buffer) ByteToPosition(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.text) {
		offset = len(b.text)
	}
	lo, hi := 0, len(b.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - b.lineOffsets[lo]
}

// ApplyByteEdit replaces [startByte, oldEndByte) with newText and returns
// the resulting Edit delta, reindexing the line table.
func (b *Buffer) ApplyByteEdit(startByte, oldEndByte int, newText string) (Edit, error) {
	if startByte < 0 || oldEndByte > len(b.text) || startByte > oldEndByte {
		return Edit{}, fmt.Errorf("buffer: invalid edit range [%d,%d) over %d bytes", startByte, oldEndByte, len(b.text))
	}
	startLine, startCol := b.ByteToPosition(startByte)
	oldEndLine, oldEndCol := b.ByteToPosition(oldEndByte)

	var out []byte
	out = append(out, b.text[:startByte]...)
	out = append(out, newText...)
	out = append(out, b.text[oldEndByte:]...)
	b.text = out
	b.reindex()

	newEndByte := startByte + len(newText)
	newEndLine, newEndCol := b.ByteToPosition(newEndByte)

	return Edit{
		StartByte:  startByte,
		OldEndByte: oldEndByte,
		NewEndByte: newEndByte,
		StartLine:  startLine,
		StartCol:   startCol,
		OldEndLine: oldEndLine,
		OldEndCol:  oldEndCol,
		NewEndLine: newEndLine,
		NewEndCol:  newEndCol,
	}, nil
}

// ApplyRangeEdit replaces the text between two (line, col) positions,
// the shape LSP incremental textDocument/didChange events arrive in.
func (b *Buffer) ApplyRangeEdit(startLine, startCol, endLine, endCol int, newText string) (Edit, error) {
	startByte := b.PositionToByte(startLine, startCol)
	endByte := b.PositionToByte(endLine, endCol)
	if endByte < startByte {
		return Edit{}, fmt.Errorf("buffer: range end precedes start")
	}
	return b.ApplyByteEdit(startByte, endByte, newText)
}
