package syntax

import "clinlint/internal/buffer"

// Reparse runs the parse driver (spec §4.1): given the buffer's current
// content and the edit deltas applied since the last analysis pass, it
// produces a fresh Tree plus the DirtySet of byte ranges those edits
// touched. The attribute engine recomputes a node's attributes only when
// the node overlaps the DirtySet or has no cached bundle.
//
// The parser here is a full reparse rather than an incremental one (no
// edit-aware reuse of the prior tree); see DESIGN.md for the tradeoff this
// accepts. Every testable property in spec §8 that concerns the
// incremental path holds regardless, since a full reparse is trivially
// "observationally equivalent to from scratch".
func Reparse(src []byte, edits []buffer.Edit) (*Tree, *DirtySet) {
	tree := Parse(src)

	spans := make([][2]int, 0, len(edits))
	for _, e := range edits {
		spans = append(spans, [2]int{e.StartByte, e.NewEndByte})
	}
	return tree, NewDirtySet(spans)
}
