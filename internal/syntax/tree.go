package syntax

// Tree is the result of one parse: a root node plus the flat list of
// Error/Missing nodes collected along the way. Most Error/Missing nodes are
// not reachable by walking the root's children (spec §4.5's recovery points
// don't always have an obvious parent slot to attach into; only an ERROR
// node standing in for a term is linked into the tree) so callers that
// need them must use Errors, not Root().Walk().
type Tree struct {
	root   *Node
	src    []byte
	errors []*Node
}

// Root returns the program node at the root of the tree.
func (t *Tree) Root() *Node { return t.root }

// Source returns the source bytes this tree was parsed from.
func (t *Tree) Source() []byte { return t.src }

// Errors returns every Error/Missing node recorded during the parse, in the
// order they were encountered.
func (t *Tree) Errors() []*Node { return t.errors }

// HasErrors reports whether the parse recorded any Error/Missing node.
func (t *Tree) HasErrors() bool { return len(t.errors) > 0 }
