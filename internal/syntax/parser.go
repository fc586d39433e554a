package syntax

import "fmt"

// parser holds the state of a single parse. It is not reused.
type parser struct {
	toks    []Lexeme
	next_   int    // index of the lexeme after tok
	tok     Lexeme // current lexeme
	file    Span   // whole-file span supplied by the caller
	cm      CodeMap
	dialect Dialect

	// lastEnd is the end offset of the last consumed non-structural
	// lexeme; composite nodes end there.
	lastEnd Pos
}

// bailout carries the first error out of the recursive descent.
type bailout struct{ err *Error }

// Parse parses a complete token stream and returns the root block,
// whose span is file. The first error aborts the parse; no partial
// tree is returned. The token stream ends at the first EOF lexeme or
// at the end of the slice. A nil CodeMap leaves error positions unset;
// a nil Dialect permits every feature and loads privately.
func Parse(tokens []Lexeme, cm CodeMap, file Span, d Dialect) (root *BlockStmt, err error) {
	p := newParser(tokens, cm, file, d)
	defer p.recover(&err)

	root = p.fileInput()
	return root, nil
}

// ParseExpr parses a single expression followed by optional newlines.
// A comma-separated list of expressions is parsed as a tuple.
func ParseExpr(tokens []Lexeme, cm CodeMap, file Span, d Dialect) (x Expr, err error) {
	p := newParser(tokens, cm, file, d)
	defer p.recover(&err)

	x = p.testList()
	for p.got(Newline) {
	}
	if p.tok.Tok != EOF {
		p.unexpected("end of expression")
	}
	return x, nil
}

func newParser(tokens []Lexeme, cm CodeMap, file Span, d Dialect) *parser {
	if d == nil {
		d = permissive{}
	}
	p := &parser{
		toks:    tokens,
		file:    file,
		cm:      cm,
		dialect: d,
		lastEnd: file.Start,
	}
	p.advance()
	return p
}

// recover converts a bailout into the returned error. Other panics
// propagate unchanged.
func (p *parser) recover(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}

// permissive is the Dialect used when the caller passes nil.
type permissive struct{}

func (permissive) Permits(Feature) bool       { return true }
func (permissive) LoadVisibility() Visibility { return Private }

// ----------------------------------------------------------------------------
// Token navigation

// advance makes the next lexeme current. Past the end of the stream
// the current lexeme is a zero-width EOF at the end of the file.
func (p *parser) advance() {
	if p.next_ < len(p.toks) && p.toks[p.next_].Tok != EOF {
		p.tok = p.toks[p.next_]
		p.next_++
		return
	}
	p.next_ = len(p.toks)
	p.tok = Lexeme{Tok: EOF, Span: Span{File: p.file.File, Start: p.file.End, End: p.file.End}}
}

// next consumes the current lexeme and returns it.
func (p *parser) next() Lexeme {
	l := p.tok
	if !l.Tok.IsStructural() {
		p.lastEnd = l.Span.End
	}
	p.advance()
	return l
}

// peek returns the kind of the lexeme after the current one.
func (p *parser) peek() Token {
	if p.next_ < len(p.toks) {
		return p.toks[p.next_].Tok
	}
	return EOF
}

// got reports whether the current token is tok.
// If so, it consumes the token.
func (p *parser) got(tok Token) bool {
	if p.tok.Tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current lexeme if it is tok and fails otherwise.
func (p *parser) want(tok Token) Lexeme {
	if p.tok.Tok != tok {
		p.unexpected(tok.String())
	}
	return p.next()
}

// spanFrom returns the span from start to the end of the last consumed lexeme.
func (p *parser) spanFrom(start Pos) Span {
	return Span{File: p.file.File, Start: start, End: p.lastEnd}
}

// ----------------------------------------------------------------------------
// Error handling

func (p *parser) position(off Pos) Position {
	if p.cm == nil {
		return Position{}
	}
	return p.cm.Position(p.file.File, off)
}

// fail aborts the parse with an error of the given kind.
func (p *parser) fail(kind ErrorKind, span Span, msg string) {
	panic(bailout{&Error{Kind: kind, Span: span, Pos: p.position(span.Start), Msg: msg}})
}

// syntaxError reports a syntax error at the current lexeme.
func (p *parser) syntaxError(msg string) {
	err := &Error{
		Kind:  SyntaxError,
		Span:  p.tok.Span,
		Pos:   p.position(p.tok.Span.Start),
		Msg:   msg,
		atEOF: p.tok.Tok == EOF,
	}
	panic(bailout{err})
}

// unexpected reports that the current lexeme is not what the grammar
// allows here.
func (p *parser) unexpected(expected string) {
	p.syntaxError(fmt.Sprintf("unexpected %s, expected %s", describe(p.tok), expected))
}

// describe names a lexeme in error messages.
func describe(l Lexeme) string {
	switch l.Tok {
	case EOF:
		return "end of input"
	case Newline:
		return "newline"
	case Indent:
		return "indentation"
	case Dedent:
		return "dedent"
	case Name:
		return "identifier " + l.Text
	case Int:
		return fmt.Sprintf("integer %d", l.Int)
	case String:
		return fmt.Sprintf("string %q", l.Text)
	}
	if l.Tok.IsKeyword() {
		return "keyword " + l.Tok.String()
	}
	return fmt.Sprintf("%q", l.Tok.String())
}

// gate fails with a DialectError if the dialect denies f.
func (p *parser) gate(f Feature, span Span) {
	if p.dialect.Permits(f) {
		return
	}
	panic(bailout{&Error{
		Kind:    DialectError,
		Span:    span,
		Pos:     p.position(span.Start),
		Msg:     fmt.Sprintf("%s are not allowed in this dialect", f.Description()),
		Feature: f,
	}})
}

// ----------------------------------------------------------------------------
// Statements

// fileInput parses: (NEWLINE | stmt)* EOF
func (p *parser) fileInput() *BlockStmt {
	b := &BlockStmt{}
	for p.tok.Tok != EOF {
		if p.got(Newline) {
			continue
		}
		b.Stmts = p.stmt(b.Stmts)
	}
	b.span = p.file
	return b
}

// stmt parses a compound statement or a line of simple statements and
// appends the result to stmts.
func (p *parser) stmt(stmts []Stmt) []Stmt {
	switch p.tok.Tok {
	case Def:
		return append(stmts, p.defStmt())
	case If:
		return append(stmts, p.ifStmt())
	case For:
		return append(stmts, p.forStmt())
	case Indent:
		p.syntaxError("unexpected indentation")
	case Elif, Else:
		p.syntaxError(fmt.Sprintf("%s without matching if", p.tok.Tok))
	}
	return p.simpleStmt(stmts)
}

// simpleStmt parses: small_stmt (';' small_stmt)* [';'] NEWLINE
// The final NEWLINE may be replaced by the end of input.
func (p *parser) simpleStmt(stmts []Stmt) []Stmt {
	for {
		stmts = append(stmts, p.smallStmt())
		if !p.got(Semi) {
			break
		}
		if p.tok.Tok == Newline || p.tok.Tok == EOF {
			break
		}
	}
	switch p.tok.Tok {
	case Newline:
		p.next()
	case EOF:
	default:
		p.unexpected("newline or ;")
	}
	return stmts
}

// smallStmt parses one simple statement.
func (p *parser) smallStmt() Stmt {
	start := p.tok.Span.Start
	switch p.tok.Tok {
	case Return:
		p.next()
		s := &ReturnStmt{}
		if !p.endsSimpleStmt() {
			s.Result = p.testList()
		}
		s.span = p.spanFrom(start)
		return s

	case Break, Continue, Pass:
		s := &BranchStmt{Tok: p.next().Tok}
		s.span = p.spanFrom(start)
		return s

	case Load:
		return p.loadStmt()
	}

	x := p.testList()
	if op, ok := assignOps[p.tok.Tok]; ok {
		p.next()
		s := &AssignStmt{LHS: x, Op: op}
		s.RHS = p.testList()
		s.span = p.spanFrom(start)
		return s
	}

	s := &ExprStmt{X: x}
	s.span = p.spanFrom(start)
	return s
}

var assignOps = map[Token]AssignOp{
	Eq:           Assign,
	PlusEq:       AddAssign,
	MinusEq:      SubAssign,
	StarEq:       MulAssign,
	SlashSlashEq: FloorDivAssign,
	PercentEq:    ModAssign,
	AmpEq:        BitAndAssign,
	PipeEq:       BitOrAssign,
	CaretEq:      BitXorAssign,
	LtLtEq:       ShlAssign,
	GtGtEq:       ShrAssign,
}

func (p *parser) endsSimpleStmt() bool {
	switch p.tok.Tok {
	case Newline, Semi, EOF:
		return true
	}
	return false
}

// loadStmt parses: load '(' STRING (',' (STRING | IDENT '=' STRING))+ [','] ')'
func (p *parser) loadStmt() Stmt {
	start := p.want(Load).Span.Start
	p.want(Lparen)
	s := &LoadStmt{Module: p.stringLit()}

	for p.got(Comma) {
		if p.tok.Tok == Rparen {
			break
		}
		s.Bindings = append(s.Bindings, p.loadBinding())
	}
	if len(s.Bindings) == 0 && p.tok.Tok == Rparen {
		p.syntaxError("load statement must import at least one symbol")
	}
	p.want(Rparen)
	s.span = p.spanFrom(start)

	p.gate(FeatureLoad, s.span)
	s.Visibility = p.dialect.LoadVisibility()
	return s
}

func (p *parser) loadBinding() *LoadBinding {
	start := p.tok.Span.Start
	b := &LoadBinding{}
	switch p.tok.Tok {
	case String:
		b.Name = p.stringLit()
		b.Local = &Ident{Name: b.Name.Str}
		b.Local.span = b.Name.span
	case Name:
		b.Local = p.ident()
		p.want(Eq)
		b.Name = p.stringLit()
	default:
		p.unexpected("string or name=string in load")
	}
	b.span = p.spanFrom(start)
	return b
}

// ifStmt parses: ('if' | 'elif') test ':' suite ['elif' ... | 'else' ':' suite]
// An elif chain nests as the Else arm of its predecessor.
func (p *parser) ifStmt() Stmt {
	start := p.next().Span.Start // if or elif
	s := &IfStmt{}
	s.Cond = p.test()
	p.want(Colon)
	s.Body = p.suite()

	switch p.tok.Tok {
	case Elif:
		s.Else = p.ifStmt()
	case Else:
		p.next()
		p.want(Colon)
		s.Else = p.suite()
	}
	s.span = p.spanFrom(start)
	return s
}

// forStmt parses: 'for' loop_variables 'in' test_list ':' suite
func (p *parser) forStmt() Stmt {
	start := p.want(For).Span.Start
	s := &ForStmt{}
	s.Vars = p.loopVariables()
	p.want(In)
	s.X = p.testList()
	p.want(Colon)
	s.Body = p.suite()
	s.span = p.spanFrom(start)
	return s
}

// defStmt parses: 'def' IDENT '(' params ')' ['->' test] ':' suite
func (p *parser) defStmt() Stmt {
	start := p.want(Def).Span.Start
	s := &DefStmt{}
	s.Name = p.ident()
	p.want(Lparen)
	s.Params = p.params(Rparen, true)
	p.want(Rparen)
	p.checkParams(s.Params)

	if p.got(Arrow) {
		s.Result = p.test()
		p.gate(FeatureTypes, s.Result.Span())
	}
	p.want(Colon)
	s.Body = p.suite()
	s.span = p.spanFrom(start)

	p.gate(FeatureDef, s.span)
	return s
}

// suite parses: simple_stmt | NEWLINE INDENT stmt+ DEDENT
func (p *parser) suite() *BlockStmt {
	b := &BlockStmt{}
	if !p.got(Newline) {
		start := p.tok.Span.Start
		b.Stmts = p.simpleStmt(nil)
		b.span = p.spanFrom(start)
		return b
	}

	for p.got(Newline) {
	}
	if !p.got(Indent) {
		p.unexpected("indented block")
	}
	for p.got(Newline) {
	}
	if p.tok.Tok == Dedent {
		p.syntaxError("expected an indented statement")
	}

	start := p.tok.Span.Start
	for p.tok.Tok != Dedent && p.tok.Tok != EOF {
		if p.got(Newline) {
			continue
		}
		b.Stmts = p.stmt(b.Stmts)
	}
	p.want(Dedent)
	b.span = p.spanFrom(start)
	return b
}

// params parses a comma-separated parameter list up to (not including)
// the close token. Typed lists accept ': T' annotations.
func (p *parser) params(close Token, typed bool) []Param {
	var params []Param
	for p.tok.Tok != close {
		params = append(params, p.param(typed))
		if !p.got(Comma) {
			break
		}
	}
	return params
}

// param parses: IDENT [':' test] ['=' test] | '*' [IDENT [':' test]] | '**' IDENT [':' test]
func (p *parser) param(typed bool) Param {
	start := p.tok.Span.Start
	switch p.tok.Tok {
	case Star:
		p.next()
		if p.tok.Tok != Name {
			q := &NoArgsParam{}
			q.span = p.spanFrom(start)
			p.gate(FeatureKeywordOnly, q.span)
			return q
		}
		q := &ArgsParam{Name: p.ident()}
		q.Type = p.annotation(typed)
		q.span = p.spanFrom(start)
		return q

	case StarStar:
		p.next()
		q := &KwArgsParam{Name: p.ident()}
		q.Type = p.annotation(typed)
		q.span = p.spanFrom(start)
		return q
	}

	name := p.ident()
	typ := p.annotation(typed)
	if p.got(Eq) {
		q := &DefaultParam{Name: name, Type: typ}
		q.Default = p.test()
		q.span = p.spanFrom(start)
		return q
	}
	q := &NormalParam{Name: name, Type: typ}
	q.span = p.spanFrom(start)
	return q
}

// annotation parses an optional ': T' in a typed parameter list.
func (p *parser) annotation(typed bool) Expr {
	if !typed || p.tok.Tok != Colon {
		return nil
	}
	p.next()
	t := p.test()
	p.gate(FeatureTypes, t.Span())
	return t
}

// ----------------------------------------------------------------------------
// Terminals

func (p *parser) ident() *Ident {
	l := p.want(Name)
	id := &Ident{Name: l.Text}
	id.span = l.Span
	return id
}

func (p *parser) stringLit() *Literal {
	l := p.want(String)
	lit := &Literal{Kind: StringLit, Str: l.Text}
	lit.span = l.Span
	return lit
}
