package syntax

// Binding levels of the binary operators, loosest first. Not and the
// comparisons are handled by dedicated rules; the remaining levels are
// left-associative and share binary.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
)

type binaryInfo struct {
	op   BinOp
	prec int
}

var binaryOps = map[Token]binaryInfo{
	Or:         {OrOp, precOr},
	And:        {AndOp, precAnd},
	Pipe:       {BitOrOp, precBitOr},
	Caret:      {BitXorOp, precBitXor},
	Amp:        {BitAndOp, precBitAnd},
	LtLt:       {ShlOp, precShift},
	GtGt:       {ShrOp, precShift},
	Plus:       {AddOp, precAdd},
	Minus:      {SubOp, precAdd},
	Star:       {MulOp, precMul},
	Percent:    {ModOp, precMul},
	SlashSlash: {FloorDivOp, precMul},
}

var compareOps = map[Token]BinOp{
	EqEq:  EqOp,
	NotEq: NotEqOp,
	Lt:    LtOp,
	Gt:    GtOp,
	Le:    LeOp,
	Ge:    GeOp,
	In:    InOp,
}

// testList parses: test (',' test)* [',']
// A single test without a trailing comma is returned as is.
func (p *parser) testList() Expr {
	start := p.tok.Span.Start
	x := p.test()
	if p.tok.Tok != Comma {
		return x
	}

	elems := []Expr{x}
	for p.got(Comma) {
		if !p.startsExpr() {
			break
		}
		elems = append(elems, p.test())
	}
	t := &TupleExpr{Elems: elems}
	t.span = p.spanFrom(start)
	return t
}

// test parses: lambda | or_test ['if' or_test 'else' test]
func (p *parser) test() Expr {
	if p.tok.Tok == Lambda {
		return p.lambda()
	}

	start := p.tok.Span.Start
	x := p.binary(precOr)
	if p.tok.Tok != If {
		return x
	}
	p.next()
	c := &CondExpr{True: x}
	c.Cond = p.binary(precOr)
	if p.tok.Tok != Else {
		p.unexpected("else in conditional expression")
	}
	p.next()
	c.False = p.test()
	c.span = p.spanFrom(start)
	return c
}

// lambda parses: 'lambda' params ':' test
func (p *parser) lambda() Expr {
	start := p.want(Lambda).Span.Start
	x := &LambdaExpr{}
	x.Params = p.params(Colon, false)
	p.want(Colon)
	p.checkParams(x.Params)
	x.Body = p.test()
	x.span = p.spanFrom(start)

	p.gate(FeatureLambda, x.span)
	return x
}

// binary parses the operators binding at least as tightly as prec.
func (p *parser) binary(prec int) Expr {
	switch {
	case prec == precNot:
		return p.notTest()
	case prec == precCompare:
		return p.comparison()
	case prec > precMul:
		return p.factor()
	}

	start := p.tok.Span.Start
	x := p.binary(prec + 1)
	for {
		info, ok := binaryOps[p.tok.Tok]
		if !ok || info.prec != prec {
			return x
		}
		p.next()
		y := p.binary(prec + 1)
		x = p.newBinary(start, info.op, x, y)
	}
}

// notTest parses: 'not' not_test | comparison
func (p *parser) notTest() Expr {
	if p.tok.Tok != Not {
		return p.comparison()
	}
	start := p.next().Span.Start
	x := &UnaryExpr{Op: LogNot}
	x.X = p.notTest()
	x.span = p.spanFrom(start)
	return x
}

// comparison parses: bitor_expr [comp_op bitor_expr]
// Comparisons do not chain; a second operator is an error.
func (p *parser) comparison() Expr {
	start := p.tok.Span.Start
	x := p.binary(precBitOr)
	op, ok := p.compareOp()
	if !ok {
		return x
	}
	y := p.binary(precBitOr)
	x = p.newBinary(start, op, x, y)

	if p.atCompareOp() {
		p.syntaxError("comparison operators cannot be chained; use parentheses")
	}
	return x
}

// compareOp consumes a comparison operator, including the two-token
// form "not in".
func (p *parser) compareOp() (BinOp, bool) {
	if p.tok.Tok == Not && p.peek() == In {
		p.next()
		p.next()
		return NotInOp, true
	}
	op, ok := compareOps[p.tok.Tok]
	if ok {
		p.next()
	}
	return op, ok
}

func (p *parser) atCompareOp() bool {
	if p.tok.Tok == Not {
		return p.peek() == In
	}
	_, ok := compareOps[p.tok.Tok]
	return ok
}

func (p *parser) newBinary(start Pos, op BinOp, x, y Expr) Expr {
	b := &BinaryExpr{Op: op, X: x, Y: y}
	b.span = p.spanFrom(start)
	return b
}

// factor parses: ('+' | '-' | '~') factor | primary
func (p *parser) factor() Expr {
	var op UnaryOp
	switch p.tok.Tok {
	case Plus:
		op = UPlus
	case Minus:
		op = UMinus
	case Tilde:
		op = BitNot
	default:
		return p.primary()
	}
	start := p.next().Span.Start
	x := &UnaryExpr{Op: op}
	x.X = p.factor()
	x.span = p.spanFrom(start)
	return x
}

// primary parses: operand trailer*
func (p *parser) primary() Expr {
	start := p.tok.Span.Start
	x := p.operand()
	for {
		switch p.tok.Tok {
		case Dot:
			p.next()
			d := &DotExpr{X: x}
			d.Name = p.ident()
			d.span = p.spanFrom(start)
			x = d
		case Lparen:
			x = p.call(start, x)
		case Lbrack:
			x = p.indexOrSlice(start, x)
		default:
			return x
		}
	}
}

// operand parses the atoms of the expression grammar.
func (p *parser) operand() Expr {
	switch p.tok.Tok {
	case Name:
		return p.ident()

	case Int:
		l := p.next()
		lit := &Literal{Kind: IntLit, Int: l.Int}
		lit.span = l.Span
		return lit

	case String:
		return p.stringLit()

	case Lbrack:
		return p.listExpr()

	case Lbrace:
		return p.dictExpr()

	case Lparen:
		start := p.next().Span.Start
		if p.got(Rparen) {
			t := &TupleExpr{}
			t.span = p.spanFrom(start)
			return t
		}
		x := p.testList()
		p.want(Rparen)
		if t, ok := x.(*TupleExpr); ok {
			t.span = p.spanFrom(start)
		}
		return x
	}

	p.unexpected("expression")
	return nil
}

// listExpr parses: '[' [test (',' test)* [','] | test comp_clauses] ']'
func (p *parser) listExpr() Expr {
	start := p.want(Lbrack).Span.Start
	if p.got(Rbrack) {
		l := &ListExpr{}
		l.span = p.spanFrom(start)
		return l
	}

	first := p.test()
	if p.tok.Tok == For {
		c := &ListComp{Body: first}
		c.Clauses = p.compClauses()
		p.want(Rbrack)
		c.span = p.spanFrom(start)
		return c
	}

	l := &ListExpr{Elems: p.exprListRest(first)}
	p.want(Rbrack)
	l.span = p.spanFrom(start)
	return l
}

// exprListRest continues a comma-separated list after its first element.
func (p *parser) exprListRest(first Expr) []Expr {
	elems := []Expr{first}
	for p.got(Comma) {
		if !p.startsExpr() {
			break
		}
		elems = append(elems, p.test())
	}
	return elems
}

// dictExpr parses: '{' [entry (',' entry)* [','] | entry comp_clauses] '}'
func (p *parser) dictExpr() Expr {
	start := p.want(Lbrace).Span.Start
	if p.got(Rbrace) {
		d := &DictExpr{}
		d.span = p.spanFrom(start)
		return d
	}

	first := p.dictEntry()
	if p.tok.Tok == For {
		c := &DictComp{Key: first.Key, Value: first.Value}
		c.Clauses = p.compClauses()
		p.want(Rbrace)
		c.span = p.spanFrom(start)
		return c
	}

	d := &DictExpr{Entries: []*DictEntry{first}}
	for p.got(Comma) {
		if p.tok.Tok == Rbrace {
			break
		}
		d.Entries = append(d.Entries, p.dictEntry())
	}
	p.want(Rbrace)
	d.span = p.spanFrom(start)
	return d
}

func (p *parser) dictEntry() *DictEntry {
	start := p.tok.Span.Start
	e := &DictEntry{Key: p.test()}
	p.want(Colon)
	e.Value = p.test()
	e.span = p.spanFrom(start)
	return e
}

// compClauses parses: for_clause (for_clause | if_clause)*
func (p *parser) compClauses() []Clause {
	clauses := []Clause{p.forClause()}
	for {
		switch p.tok.Tok {
		case For:
			clauses = append(clauses, p.forClause())
		case If:
			start := p.next().Span.Start
			c := &IfClause{}
			c.Cond = p.binary(precOr)
			c.span = p.spanFrom(start)
			clauses = append(clauses, c)
		default:
			return clauses
		}
	}
}

// forClause parses: 'for' loop_variables 'in' or_test
func (p *parser) forClause() *ForClause {
	start := p.want(For).Span.Start
	c := &ForClause{}
	c.Vars = p.loopVariables()
	p.want(In)
	c.X = p.binary(precOr)
	c.span = p.spanFrom(start)
	return c
}

// loopVariables parses: bitor_expr (',' bitor_expr)*
// Operands are drawn from the bitwise-or level so that 'in' ends the
// list. A trailing comma is not accepted.
func (p *parser) loopVariables() Expr {
	start := p.tok.Span.Start
	x := p.binary(precBitOr)
	if p.tok.Tok != Comma {
		return x
	}
	elems := []Expr{x}
	for p.got(Comma) {
		elems = append(elems, p.binary(precBitOr))
	}
	t := &TupleExpr{Elems: elems}
	t.span = p.spanFrom(start)
	return t
}

// call parses the argument list of a call to fn.
func (p *parser) call(start Pos, fn Expr) Expr {
	p.want(Lparen)
	c := &CallExpr{Fn: fn}
	for p.tok.Tok != Rparen {
		c.Args = append(c.Args, p.argument())
		if !p.got(Comma) {
			break
		}
	}
	p.want(Rparen)
	p.checkArgs(c.Args)
	c.span = p.spanFrom(start)
	return c
}

// argument parses: test | IDENT '=' test | '*' test | '**' test
func (p *parser) argument() Arg {
	start := p.tok.Span.Start
	switch {
	case p.tok.Tok == Star:
		p.next()
		a := &ArgsArg{X: p.test()}
		a.span = p.spanFrom(start)
		return a

	case p.tok.Tok == StarStar:
		p.next()
		a := &KwArgsArg{X: p.test()}
		a.span = p.spanFrom(start)
		return a

	case p.tok.Tok == Name && p.peek() == Eq:
		a := &NamedArg{Name: p.ident()}
		p.want(Eq)
		a.X = p.test()
		a.span = p.spanFrom(start)
		return a
	}

	a := &PositionalArg{X: p.test()}
	a.span = p.spanFrom(start)
	return a
}

// indexOrSlice parses a '[' trailer. At least one ':' makes it a slice;
// otherwise the bracket holds an index list.
func (p *parser) indexOrSlice(start Pos, x Expr) Expr {
	p.want(Lbrack)

	var lo Expr
	if p.tok.Tok != Colon {
		lo = p.test()
		if p.tok.Tok != Colon {
			ix := &IndexExpr{X: x, Index: lo}
			if p.tok.Tok == Comma {
				tstart := lo.Pos()
				t := &TupleExpr{Elems: p.exprListRest(lo)}
				t.span = p.spanFrom(tstart)
				ix.Index = t
			}
			p.want(Rbrack)
			ix.span = p.spanFrom(start)
			return ix
		}
	}

	s := &SliceExpr{X: x, Lo: lo}
	p.want(Colon)
	if p.tok.Tok != Colon && p.tok.Tok != Rbrack {
		s.Hi = p.test()
	}
	if p.got(Colon) && p.tok.Tok != Rbrack {
		s.Step = p.test()
	}
	p.want(Rbrack)
	s.span = p.spanFrom(start)
	return s
}

// startsExpr reports whether the current token can begin a test.
func (p *parser) startsExpr() bool {
	switch p.tok.Tok {
	case Name, Int, String, Lparen, Lbrack, Lbrace,
		Plus, Minus, Tilde, Not, Lambda:
		return true
	}
	return false
}
