package syntax

// parser is a hand-written recursive-descent parser. It never stops at the
// first error: malformed input is absorbed into ERROR/MISSING nodes so the
// rest of the document still contributes to the semantic model (spec §7).
type parser struct {
	lex     *lexer
	tok     Token
	prevEnd int
	src     []byte
	errors  []*Node // collected ERROR/MISSING nodes, not linked into the main tree

	lastStmtKind Kind // kind of the most recently completed top-level statement
	hasLastStmt  bool
}

// Parse builds a Tree from source bytes.
func Parse(src []byte) *Tree {
	p := &parser{lex: newLexer(src), src: src}
	p.advance()

	var stmts []*Node
	for p.tok.Kind != TokEOF {
		start := p.tok.Start
		stmt := p.parseStatement()
		if stmt == nil {
			// Could not make progress; consume one token as an error node
			// so the loop always terminates.
			e := p.errorNode(start, p.tok.End, KindErrorNode, "")
			e.prevSiblingKnd, e.hasPrevSibling = p.lastStmtKind, p.hasLastStmt
			stmt = e
			p.advance()
		}
		stmts = append(stmts, stmt)
		p.lastStmtKind, p.hasLastStmt = stmt.kind, true
	}
	end := len(src)
	root := newNode(KindProgram, 0, end, stmts...)
	return &Tree{root: root, src: src, errors: p.errors}
}

func (p *parser) advance() {
	p.prevEnd = p.tok.End
	p.tok = p.lex.Next()
}

func (p *parser) at(k TokenKind) bool { return p.tok.Kind == k }

// punctuationKind is the CST kind assigned to a matched punctuation/keyword
// token; the attribute engine never inspects it, only IsMissing/IsError.
const punctuationKind = KindPunctuation

// expect consumes a token of kind k, or records a MISSING node and does not
// advance if the token is absent (spec §4.5 `is_missing`).
func (p *parser) expect(k TokenKind) *Node {
	if p.tok.Kind == k {
		tok := p.tok
		p.advance()
		return newNode(punctuationKind, tok.Start, tok.End)
	}
	n := &Node{kind: KindMissingToken, start: p.tok.Start, end: p.tok.Start, isMissing: true, expectedKind: k}
	n.id = computeID(KindMissingToken, n.start, n.end)
	p.errors = append(p.errors, n)
	return n
}

func (p *parser) errorNode(start, end int, kind Kind, prevKindText string) *Node {
	n := newNode(kind, start, end)
	n.isError = true
	p.errors = append(p.errors, n)
	return n
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (p *parser) parseStatement() *Node {
	start := p.tok.Start
	switch p.tok.Kind {
	case TokColonDash:
		p.advance()
		body := p.parseBody()
		p.consumeDot(start)
		return newNode(KindConstraint, start, p.lastEnd(), body)
	case TokColonTilde:
		p.advance()
		body := p.parseBody()
		p.consumeDot(start)
		tuple := p.parseWeightTuple()
		return newNode(KindWeakConstraint, start, p.lastEnd(), body, tuple)
	case TokHashShow:
		p.advance()
		term := p.parseTerm()
		children := []*Node{term}
		if p.at(TokColon) {
			p.advance()
			children = append(children, p.parseBody())
		}
		p.consumeDot(start)
		return newNode(KindShow, start, p.lastEnd(), children...)
	case TokHashExternal:
		p.advance()
		atom := p.parseAtom()
		children := []*Node{atom}
		if p.at(TokColon) {
			p.advance()
			children = append(children, p.parseBody())
		}
		p.consumeDot(start)
		return newNode(KindExternal, start, p.lastEnd(), children...)
	case TokHashMinimize, TokHashMaximize:
		op := OpMinimize
		if p.tok.Kind == TokHashMaximize {
			op = OpMaximize
		}
		p.advance()
		p.expect(TokLBrace)
		var elems []*Node
		for !p.at(TokRBrace) && !p.at(TokEOF) && !p.at(TokDot) {
			elems = append(elems, p.parseOptElement())
			if p.at(TokSemi) {
				p.advance()
				continue
			}
			break
		}
		p.expect(TokRBrace)
		p.consumeDot(start)
		n := newNode(KindOptimize, start, p.lastEnd(), elems...)
		n.op = op
		return n
	default:
		return p.parseHeadStatement(start)
	}
}

func (p *parser) parseHeadStatement(start int) *Node {
	head := p.parseDisjunction()
	if p.at(TokColonDash) {
		p.advance()
		body := p.parseBody()
		p.consumeDot(start)
		return newNode(KindRule, start, p.lastEnd(), head, body)
	}
	p.consumeDot(start)
	return newNode(KindFact, start, p.lastEnd(), head)
}

// consumeDot expects the terminating '.', recording a MISSING/ERROR node
// otherwise and resynchronizing to the next statement boundary.
func (p *parser) consumeDot(stmtStart int) {
	if p.at(TokDot) {
		p.advance()
		return
	}
	if p.at(TokEOF) {
		p.expect(TokDot)
		return
	}
	// Something unexpected sits where '.' was due: record an ERROR node
	// anchored at the offending token and resynchronize at the next '.'.
	errStart := p.tok.Start
	for !p.at(TokDot) && !p.at(TokEOF) {
		p.advance()
	}
	errEnd := p.tok.Start
	if errEnd <= errStart {
		errEnd = errStart + 1
	}
	e := p.errorNode(errStart, errEnd, KindErrorNode, "")
	e.prevSiblingKnd, e.hasPrevSibling = p.lastStmtKind, p.hasLastStmt
	if p.at(TokDot) {
		p.advance()
	}
}

// lastEnd returns the end byte of the most recently consumed token, i.e.
// the end of whatever was just parsed.
func (p *parser) lastEnd() int { return p.prevEnd }

func (p *parser) parseWeightTuple() *Node {
	start := p.tok.Start
	p.expect(TokLBracket)
	var terms []*Node
	terms = append(terms, p.parseTerm())
	for p.at(TokAt) {
		p.advance()
		terms = append(terms, p.parseTerm())
	}
	for p.at(TokComma) {
		p.advance()
		terms = append(terms, p.parseTerm())
	}
	p.expect(TokRBracket)
	return newNode(KindWeightTuple, start, p.lastEnd(), terms...)
}

func (p *parser) parseOptElement() *Node {
	start := p.tok.Start
	weight := p.parseTerm()
	terms := []*Node{weight}
	if p.at(TokAt) {
		p.advance()
		terms = append(terms, p.parseTerm())
	}
	for p.at(TokComma) {
		p.advance()
		terms = append(terms, p.parseTerm())
	}
	var body *Node
	if p.at(TokColon) {
		p.advance()
		body = p.parseBody()
	}
	tuple := newNode(KindWeightTuple, start, p.lastEnd(), terms...)
	if body != nil {
		return newNode(KindOptElement, start, p.lastEnd(), tuple, body)
	}
	return newNode(KindOptElement, start, p.lastEnd(), tuple)
}

// ---------------------------------------------------------------------
// Head / disjunction
// ---------------------------------------------------------------------

func (p *parser) parseDisjunction() *Node {
	start := p.tok.Start
	var elems []*Node
	elems = append(elems, p.parseHeadElement())
	for p.at(TokSemi) {
		p.advance()
		elems = append(elems, p.parseHeadElement())
	}
	return newNode(KindDisjunction, start, p.lastEnd(), elems...)
}

func (p *parser) parseHeadElement() *Node {
	start := p.tok.Start
	if p.at(TokLBrace) {
		agg := p.parseAggregate(nil, OpNone, false)
		return newNode(KindHeadElement, start, p.lastEnd(), agg)
	}
	lit := p.parseLiteralOrComparisonOrAggregate()
	if p.at(TokColon) {
		p.advance()
		cond := p.parseBody()
		cnd := newNode(KindConditional, start, p.lastEnd(), lit, cond)
		return newNode(KindHeadElement, start, p.lastEnd(), cnd)
	}
	return newNode(KindHeadElement, start, p.lastEnd(), lit)
}

// ---------------------------------------------------------------------
// Body
// ---------------------------------------------------------------------

func (p *parser) atBodyStop() bool {
	switch p.tok.Kind {
	case TokDot, TokRBrace, TokRBracket, TokEOF, TokColon:
		return true
	default:
		return false
	}
}

func (p *parser) parseBody() *Node {
	start := p.tok.Start
	var items []*Node
	if p.atBodyStop() {
		return newNode(KindBody, start, p.lastEnd())
	}
	items = append(items, p.parseConditionalLiteral())
	for p.at(TokComma) {
		p.advance()
		items = append(items, p.parseConditionalLiteral())
	}
	return newNode(KindBody, start, p.lastEnd(), items...)
}

func (p *parser) parseConditionalLiteral() *Node {
	start := p.tok.Start
	lit := p.parseLiteralOrComparisonOrAggregate()
	if p.at(TokColon) {
		p.advance()
		cond := p.parseBody()
		return newNode(KindConditional, start, p.lastEnd(), lit, cond)
	}
	return lit
}

// parseLiteralOrComparisonOrAggregate parses one literal: a possibly
// negated atom, a comparison, or an aggregate (with optional bounds).
func (p *parser) parseLiteralOrComparisonOrAggregate() *Node {
	start := p.tok.Start
	neg := false
	if p.at(TokNot) {
		p.advance()
		neg = true
	}

	if p.isAggregateStart() {
		agg := p.parseAggregate(nil, OpNone, false)
		if neg {
			return newNode(KindNegatedLiteral, start, p.lastEnd(), agg)
		}
		return agg
	}

	term1 := p.parseTerm()
	if p.isComparisonOp() {
		op := p.consumeComparisonOp()
		if p.isAggregateStart() {
			agg := p.parseAggregate(term1, op, true)
			if neg {
				return newNode(KindNegatedLiteral, start, p.lastEnd(), agg)
			}
			return agg
		}
		term2 := p.parseTerm()
		finalOp := op
		if neg {
			finalOp = NegateComparison(op)
		}
		cmp := newNode(KindComparison, start, p.lastEnd(), term1, term2)
		cmp.op = finalOp
		return cmp
	}

	// Plain atom literal: term1 must be an identifier/function-shaped node.
	atom := newNode(KindAtom, term1.start, term1.end, term1.children...)
	atom.text = term1.text
	if neg {
		return newNode(KindNegatedLiteral, start, p.lastEnd(), atom)
	}
	return newNode(KindLiteral, start, p.lastEnd(), atom)
}

func (p *parser) parseAtom() *Node {
	start := p.tok.Start
	name := p.tok
	if p.at(TokIdentifier) {
		p.advance()
	}
	var args *Node
	if p.at(TokLParen) {
		p.advance()
		args = p.parseArgvec()
		p.expect(TokRParen)
	}
	var children []*Node
	if args != nil {
		children = append(children, args)
	}
	n := newNode(KindAtom, start, p.lastEnd(), children...)
	n.text = name.Text
	return n
}

func (p *parser) isAggregateStart() bool {
	switch p.tok.Kind {
	case TokHashCount, TokHashSum, TokHashMin, TokHashMax, TokLBrace:
		return true
	default:
		return false
	}
}

func (p *parser) isComparisonOp() bool {
	switch p.tok.Kind {
	case TokEq, TokNeq, TokLt, TokGt, TokLe, TokGe:
		return true
	default:
		return false
	}
}

func (p *parser) consumeComparisonOp() Op {
	var op Op
	switch p.tok.Kind {
	case TokEq:
		op = OpEq
	case TokNeq:
		op = OpNeq
	case TokLt:
		op = OpLt
	case TokGt:
		op = OpGt
	case TokLe:
		op = OpLe
	case TokGe:
		op = OpGe
	}
	p.advance()
	return op
}

// parseAggregate parses `[left OP] (#aggr|'{') { elements } [OP right]`.
// leftTerm/leftOp are the already-consumed left bound, if any.
func (p *parser) parseAggregate(leftTerm *Node, leftOp Op, hasLeft bool) *Node {
	start := p.tok.Start
	if hasLeft && leftTerm != nil {
		start = leftTerm.start
	}

	aggOp := OpNone
	switch p.tok.Kind {
	case TokHashCount:
		aggOp = OpCount
		p.advance()
	case TokHashSum:
		aggOp = OpSum
		p.advance()
	case TokHashMin:
		aggOp = OpMin
		p.advance()
	case TokHashMax:
		aggOp = OpMax
		p.advance()
	case TokLBrace:
		aggOp = OpNone
	}

	elements := p.parseAggregateElements()

	var children []*Node
	if hasLeft && leftTerm != nil {
		children = append(children, leftTerm)
	}
	children = append(children, elements)

	hasRight := false
	var rightOp Op
	if p.isComparisonOp() {
		rightOp = p.consumeComparisonOp()
		right := p.parseTerm()
		children = append(children, right)
		hasRight = true
	}

	n := newNode(KindAggregate, start, p.lastEnd(), children...)
	n.op = aggOp
	n.hasLeftBound = hasLeft
	n.leftOp = leftOp
	n.hasRightBound = hasRight
	n.rightOp = rightOp
	return n
}

func (p *parser) parseAggregateElements() *Node {
	start := p.tok.Start
	p.expect(TokLBrace)
	var elems []*Node
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		elems = append(elems, p.parseAggregateElement())
		if p.at(TokSemi) {
			p.advance()
			continue
		}
		if p.at(TokComma) {
			// Some sources use ',' between simple elements; accept it too.
			p.advance()
			continue
		}
		break
	}
	p.expect(TokRBrace)
	return newNode(KindBody, start, p.lastEnd(), elems...) // reuse Body as a generic list container
}

func (p *parser) parseAggregateElement() *Node {
	start := p.tok.Start
	var head *Node
	if p.isTermStart() {
		var terms []*Node
		terms = append(terms, p.parseTerm())
		for p.at(TokComma) {
			p.advance()
			terms = append(terms, p.parseTerm())
		}
		head = newNode(KindTermvec, start, p.lastEnd(), terms...)
	} else {
		head = p.parseLiteralOrComparisonOrAggregate()
	}
	var cond *Node
	if p.at(TokColon) {
		p.advance()
		cond = p.parseBody()
	}
	if cond != nil {
		return newNode(KindAggregateElement, start, p.lastEnd(), head, cond)
	}
	return newNode(KindAggregateElement, start, p.lastEnd(), head)
}

func (p *parser) isTermStart() bool {
	switch p.tok.Kind {
	case TokVariable, TokNumber, TokMinus, TokLParen, TokString:
		return true
	case TokIdentifier:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------
// Terms
// ---------------------------------------------------------------------

func (p *parser) parseTerm() *Node { return p.parseAdditive() }

func (p *parser) parseAdditive() *Node {
	left := p.parseMultiplicative()
	for p.at(TokPlus) || p.at(TokMinus) {
		op := OpAdd
		if p.tok.Kind == TokMinus {
			op = OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		n := newNode(KindBinaryTerm, left.start, p.lastEnd(), left, right)
		n.op = op
		left = n
	}
	return left
}

func (p *parser) parseMultiplicative() *Node {
	left := p.parseUnary()
	for p.at(TokStar) || p.at(TokSlash) {
		op := OpMul
		if p.tok.Kind == TokSlash {
			op = OpDiv
		}
		p.advance()
		right := p.parseUnary()
		n := newNode(KindBinaryTerm, left.start, p.lastEnd(), left, right)
		n.op = op
		left = n
	}
	return left
}

func (p *parser) parseUnary() *Node {
	if p.at(TokMinus) {
		start := p.tok.Start
		p.advance()
		operand := p.parseUnary()
		n := newNode(KindUnaryTerm, start, p.lastEnd(), operand)
		n.op = OpSub
		return n
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() *Node {
	start := p.tok.Start
	switch p.tok.Kind {
	case TokVariable:
		text := p.tok.Text
		p.advance()
		n := newNode(KindVariable, start, p.lastEnd())
		n.text = text
		return n
	case TokNumber:
		text := p.tok.Text
		p.advance()
		n := newNode(KindConstant, start, p.lastEnd())
		n.text = text
		return n
	case TokString:
		text := p.tok.Text
		p.advance()
		n := newNode(KindConstant, start, p.lastEnd())
		n.text = text
		return n
	case TokIdentifier:
		name := p.tok.Text
		p.advance()
		var args *Node
		if p.at(TokLParen) {
			p.advance()
			args = p.parseArgvec()
			p.expect(TokRParen)
		}
		var children []*Node
		if args != nil {
			children = append(children, args)
		}
		n := newNode(KindIdentifier, start, p.lastEnd(), children...)
		n.text = name
		return n
	case TokLParen:
		p.advance()
		inner := p.parseParenTermOrPool()
		p.expect(TokRParen)
		return inner
	default:
		n := p.errorNode(start, p.tok.End, KindErrorNode, "")
		if p.tok.Kind != TokEOF {
			p.advance()
		}
		return n
	}
}

func (p *parser) parseParenTermOrPool() *Node {
	first := p.parseTerm()
	if !p.at(TokSemi) {
		return first
	}
	alts := []*Node{first}
	for p.at(TokSemi) {
		p.advance()
		alts = append(alts, p.parseTerm())
	}
	pool := alts[0]
	for i := 1; i < len(alts); i++ {
		pool = newNode(KindPool, pool.start, alts[i].end, pool, alts[i])
	}
	return pool
}

// parseArgvec parses a function/atom argument list: a comma-separated
// term vector, with ';' forming pool alternatives at the top level
// (spec §4.2 "Argvec with pool separator").
func (p *parser) parseArgvec() *Node {
	start := p.tok.Start
	if p.at(TokRParen) {
		return newNode(KindArgvec, start, p.lastEnd())
	}
	alts := [][]*Node{p.parseTermvecItems()}
	for p.at(TokSemi) {
		p.advance()
		alts = append(alts, p.parseTermvecItems())
	}
	if len(alts) == 1 {
		return newNode(KindArgvec, start, p.lastEnd(), alts[0]...)
	}
	pool := newNode(KindArgvec, start, p.lastEnd(), alts[0]...)
	for i := 1; i < len(alts); i++ {
		next := newNode(KindArgvec, start, p.lastEnd(), alts[i]...)
		pool = newNode(KindPool, pool.start, next.end, pool, next)
	}
	return pool
}

func (p *parser) parseTermvecItems() []*Node {
	var items []*Node
	if p.at(TokRParen) || p.at(TokSemi) {
		return items
	}
	items = append(items, p.parseTerm())
	for p.at(TokComma) {
		p.advance()
		items = append(items, p.parseTerm())
	}
	return items
}
