package syntax

// ErrorRecord is one is_error node's contribution to the syntax collector
// (spec §4.5): the offending range plus the kind of the statement it
// trails, if any.
type ErrorRecord struct {
	StartByte      int
	EndByte        int
	PrevSiblingKnd Kind
	HasPrevSibling bool
}

// MissingRecord is one is_missing node's contribution: the point where a
// token was expected, plus which token kind was expected.
type MissingRecord struct {
	StartByte int
	EndByte   int
	Expected  TokenKind
}

// Collect walks a Tree's recorded Error/Missing nodes into the two record
// kinds the diagnostic formatter consumes. It does not walk Root(): most
// error nodes are not reachable that way (see Tree's doc comment).
func Collect(t *Tree) (errs []ErrorRecord, missing []MissingRecord) {
	for _, n := range t.Errors() {
		switch {
		case n.isMissing:
			missing = append(missing, MissingRecord{
				StartByte: n.start,
				EndByte:   n.end,
				Expected:  n.expectedKind,
			})
		case n.isError:
			errs = append(errs, ErrorRecord{
				StartByte:      n.start,
				EndByte:        n.end,
				PrevSiblingKnd: n.prevSiblingKnd,
				HasPrevSibling: n.hasPrevSibling,
			})
		}
	}
	return errs, missing
}
