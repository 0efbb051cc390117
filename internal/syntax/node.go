// Package syntax implements the concrete-syntax parser and tree for the
// object language. It is a hand-written recursive-descent parser because
// no tree-sitter grammar for this ASP dialect exists among the available
// ecosystem dependencies (see DESIGN.md); its Node/Tree API is modeled on
// github.com/smacker/go-tree-sitter's *sitter.Node/*sitter.TreeCursor shape
// (Kind/StartByte/EndByte/Child/IsError/IsMissing) for idiom fidelity.
package syntax

import "hash/fnv"

// Kind is the CST node's grammar label.
type Kind int

const (
	KindProgram Kind = iota
	KindRule
	KindFact
	KindConstraint
	KindShow
	KindExternal
	KindWeakConstraint
	KindOptimize // #minimize / #maximize statement
	KindOptElement
	KindDisjunction
	KindHeadElement
	KindConditional
	KindAggregate
	KindAggregateElement
	KindBody
	KindLiteral
	KindNegatedLiteral
	KindComparison
	KindAtom
	KindTermvec
	KindArgvec
	KindPool
	KindVariable
	KindConstant
	KindIdentifier
	KindBinaryTerm
	KindUnaryTerm
	KindWeightTuple
	KindErrorNode
	KindMissingToken
	KindPunctuation
)

var kindNames = map[Kind]string{
	KindProgram:        "program",
	KindRule:           "rule",
	KindFact:           "fact",
	KindConstraint:     "constraint",
	KindShow:           "show",
	KindExternal:       "external",
	KindWeakConstraint: "weak_constraint",
	KindOptimize:       "optimize",
	KindOptElement:     "opt_element",
	KindDisjunction:    "disjunction",
	KindHeadElement:    "head_element",
	KindConditional:    "conditional",
	KindAggregate:      "aggregate",
	KindAggregateElement: "aggregate_element",
	KindBody:           "body",
	KindLiteral:        "literal",
	KindNegatedLiteral: "negated_literal",
	KindComparison:     "comparison",
	KindAtom:           "atom",
	KindTermvec:        "termvec",
	KindArgvec:         "argvec",
	KindPool:           "pool",
	KindVariable:       "variable",
	KindConstant:       "constant",
	KindIdentifier:     "identifier",
	KindBinaryTerm:     "binary_term",
	KindUnaryTerm:      "unary_term",
	KindWeightTuple:    "weight_tuple",
	KindErrorNode:      "ERROR",
	KindMissingToken:   "MISSING",
	KindPunctuation:    "punctuation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// NodeID is a stable identifier for a node: derived from its kind and byte
// span, it is unchanged across an edit precisely when the node's span is
// unchanged (spec §3), and regenerates deterministically on a full reparse.
type NodeID uint64

// Op names a binary/unary arithmetic operator, comparison operator, or
// aggregate function, as free text so new operators don't need new Kinds.
type Op string

const (
	OpNone Op = ""
	OpAdd  Op = "+"
	OpSub  Op = "-"
	OpMul  Op = "*"
	OpDiv  Op = "/"
	OpDots Op = ".."

	OpEq  Op = "="
	OpNeq Op = "!="
	OpLt  Op = "<"
	OpGt  Op = ">"
	OpLe  Op = "<="
	OpGe  Op = ">="

	OpCount Op = "#count"
	OpSum   Op = "#sum"
	OpMin   Op = "#min"
	OpMax   Op = "#max"

	OpMinimize Op = "#minimize"
	OpMaximize Op = "#maximize"
)

// NegateComparison flips a comparison operator under an outer `not`
// (spec §4.2: "An outer not flips the comparison").
func NegateComparison(op Op) Op {
	switch op {
	case OpEq:
		return OpNeq
	case OpNeq:
		return OpEq
	case OpLt:
		return OpGe
	case OpGe:
		return OpLt
	case OpGt:
		return OpLe
	case OpLe:
		return OpGt
	default:
		return op
	}
}

// Node is one concrete-syntax-tree node. Leaf nodes (Variable, Constant,
// Identifier, and error/missing markers) carry Text; interior nodes carry
// Children.
type Node struct {
	id       NodeID
	kind     Kind
	start    int
	end      int
	children []*Node
	parent   *Node

	text string // leaf token text
	op   Op     // operator for BinaryTerm/UnaryTerm/Comparison/Aggregate

	isError        bool
	isMissing      bool
	expectedKind   TokenKind // populated when isMissing
	prevSiblingKnd Kind      // populated when isError, see syntax collector §4.5
	hasPrevSibling bool

	// Aggregate-specific bound bookkeeping (spec §4.2 "Body aggregate").
	hasLeftBound  bool
	hasRightBound bool
	leftOp        Op
	rightOp       Op
}

// AggregateElements returns an Aggregate node's element-list child.
func (n *Node) AggregateElements() *Node {
	i := 0
	if n.hasLeftBound {
		i++
	}
	return n.children[i]
}

// AggregateLeftBound returns the term left of the aggregate, if present.
func (n *Node) AggregateLeftBound() *Node {
	if !n.hasLeftBound {
		return nil
	}
	return n.children[0]
}

// AggregateRightBound returns the term right of the aggregate, if present.
func (n *Node) AggregateRightBound() *Node {
	if !n.hasRightBound {
		return nil
	}
	idx := 1
	if n.hasLeftBound {
		idx = 2
	}
	return n.children[idx]
}

// AggregateBoundOps returns the comparison operators bracketing the
// aggregate on the left and right, and whether each is present.
func (n *Node) AggregateBoundOps() (left Op, hasLeft bool, right Op, hasRight bool) {
	return n.leftOp, n.hasLeftBound, n.rightOp, n.hasRightBound
}

func newNode(kind Kind, start, end int, children ...*Node) *Node {
	n := &Node{kind: kind, start: start, end: end, children: children}
	for _, c := range children {
		if c != nil {
			c.parent = n
		}
	}
	n.id = computeID(kind, start, end)
	return n
}

func computeID(kind Kind, start, end int) NodeID {
	h := fnv.New64a()
	var buf [24]byte
	putInt := func(off int, v int) {
		for i := 0; i < 8; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	putInt(0, int(kind))
	putInt(8, start)
	putInt(16, end)
	h.Write(buf[:])
	return NodeID(h.Sum64())
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's grammar label.
func (n *Node) Kind() Kind { return n.kind }

// StartByte returns the node's start byte offset, inclusive.
func (n *Node) StartByte() int { return n.start }

// EndByte returns the node's end byte offset, exclusive.
func (n *Node) EndByte() int { return n.end }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns all children. Callers must not mutate the slice.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Text returns a leaf node's token text.
func (n *Node) Text() string { return n.text }

// Op returns the operator carried by arithmetic/comparison/aggregate nodes.
func (n *Node) Op() Op { return n.op }

// IsError reports whether this node records a parser error (spec §4.5).
func (n *Node) IsError() bool { return n.isError }

// IsMissing reports whether this node stands in for an expected-but-absent
// token (spec §4.5).
func (n *Node) IsMissing() bool { return n.isMissing }

// ExpectedTokenKind returns the token kind a MISSING node stands in for.
func (n *Node) ExpectedTokenKind() TokenKind { return n.expectedKind }

// PrevSiblingKind returns the kind of the statement-level node preceding an
// ERROR node, or (0, false) if there was none (spec §4.5).
func (n *Node) PrevSiblingKind() (Kind, bool) { return n.prevSiblingKnd, n.hasPrevSibling }

// Walk returns a depth-first post-order slice of the subtree rooted at n,
// children before parents — the order the attribute engine requires so
// that child attributes are always computed before their parent reads them.
func (n *Node) Walk() []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(x *Node) {
		for _, c := range x.children {
			visit(c)
		}
		out = append(out, x)
	}
	visit(n)
	return out
}

// Overlaps reports whether the node's byte span intersects [start, end).
func (n *Node) Overlaps(start, end int) bool {
	return n.start < end && start < n.end
}

// NodeAt returns the smallest node in the subtree rooted at n whose span
// contains offset, or nil if offset falls outside n entirely. Used by
// completion/navigation to resolve a cursor position to a CST node.
func (n *Node) NodeAt(offset int) *Node {
	if offset < n.start || offset > n.end {
		return nil
	}
	best := n
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if hit := c.NodeAt(offset); hit != nil {
			best = hit
			break
		}
	}
	return best
}

// EnclosingStatement walks up from n to the nearest top-level statement
// node (a direct child of Program), or n itself if n has no parent.
func (n *Node) EnclosingStatement() *Node {
	cur := n
	for cur.parent != nil && cur.parent.kind != KindProgram {
		cur = cur.parent
	}
	return cur
}
