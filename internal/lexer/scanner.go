// Package lexer converts starling source text into the lexeme stream
// consumed by package syntax, synthesizing NEWLINE, INDENT and DEDENT
// from the layout of the source.
package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/you-not-fish/starling/internal/syntax"
)

// tabWidth is the column multiple a tab advances indentation to.
const tabWidth = 8

// Scanner performs lexical analysis on starling source code.
type Scanner struct {
	source // embedded character reader

	file    syntax.FileID
	pending []syntax.Lexeme // scanned but not yet returned
	done    bool            // EOF has been queued

	// Layout state
	indents       []int // stack of indentation columns, starting with 0
	depth         int   // bracket nesting; newlines inside brackets are ignored
	atLineStart   bool  // the next character begins a physical line
	lineHasTokens bool  // a non-structural lexeme was emitted on this logical line

	err *syntax.Error // first error

	// Literal accumulation
	litBuf strings.Builder
}

// NewScanner creates a Scanner for src, which belongs to file.
func NewScanner(file syntax.FileID, src []byte) *Scanner {
	s := &Scanner{
		file:        file,
		indents:     []int{0},
		atLineStart: true,
	}
	s.source = *newSource(src, s.recordError)
	return s
}

// Scan converts src into lexemes terminated by a single EOF lexeme.
// It stops at the first lexical error.
func Scan(file syntax.FileID, src []byte) ([]syntax.Lexeme, error) {
	s := NewScanner(file, src)
	var toks []syntax.Lexeme
	for {
		l := s.Next()
		if err := s.Err(); err != nil {
			return nil, err
		}
		toks = append(toks, l)
		if l.Tok == syntax.EOF {
			return toks, nil
		}
	}
}

// Next returns the next lexeme. After the end of input, or after an
// error, it keeps returning EOF.
func (s *Scanner) Next() syntax.Lexeme {
	for len(s.pending) == 0 {
		if s.err != nil || s.done {
			return s.eof()
		}
		s.scan()
	}
	l := s.pending[0]
	s.pending = s.pending[1:]
	return l
}

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

func (s *Scanner) eof() syntax.Lexeme {
	end := syntax.Pos(len(s.buf))
	return syntax.Lexeme{Tok: syntax.EOF, Span: syntax.MakeSpan(s.file, end, end)}
}

func (s *Scanner) recordError(line, col uint32, off int, msg string) {
	if s.err != nil {
		return
	}
	p := syntax.Pos(off)
	s.err = syntax.NewError(syntax.SyntaxError, syntax.MakeSpan(s.file, p, p), syntax.NewPosition("", line, col), msg)
}

// incomplete reports an error caused by the input ending too early.
func (s *Scanner) incomplete(msg string) {
	if s.err != nil {
		return
	}
	p := s.pos()
	s.err = syntax.NewIncompleteError(syntax.MakeSpan(s.file, p, p), syntax.NewPosition("", s.line, s.col), msg)
}

// emit queues a lexeme spanning from start to the current offset.
func (s *Scanner) emit(tok syntax.Token, start syntax.Pos, text string) *syntax.Lexeme {
	s.pending = append(s.pending, syntax.Lexeme{
		Tok:  tok,
		Span: syntax.MakeSpan(s.file, start, s.pos()),
		Text: text,
	})
	if !tok.IsStructural() {
		s.lineHasTokens = true
	}
	return &s.pending[len(s.pending)-1]
}

// scan queues at least one lexeme unless an error occurs.
func (s *Scanner) scan() {
	if s.atLineStart {
		s.atLineStart = false
		if s.indentation() {
			return
		}
	}

redo:
	s.skipWhitespace()
	start := s.pos()

	switch {
	case s.ch < 0:
		s.finish()

	case s.ch == '#':
		s.skipComment()
		goto redo

	case s.ch == '\\':
		s.nextch()
		if s.ch == '\r' {
			s.nextch()
		}
		if s.ch != '\n' {
			s.error("unexpected character '\\'")
			return
		}
		s.nextch()
		goto redo

	case s.ch == '\n':
		s.nextch()
		if s.depth > 0 {
			goto redo
		}
		s.emit(syntax.Newline, start, "")
		s.lineHasTokens = false
		s.atLineStart = true

	case isLetter(s.ch):
		s.scanIdent(start)

	case isDigit(s.ch):
		s.scanNumber(start)

	case s.ch == '"' || s.ch == '\'':
		s.scanString(start, false)

	case isOperatorStart(s.ch):
		s.scanOperator(start)

	default:
		s.error(fmt.Sprintf("unexpected character %q", s.ch))
	}
}

// indentation measures the leading whitespace of a logical line and
// queues INDENT or DEDENT lexemes. Blank and comment-only lines do not
// affect indentation. It reports whether anything was queued.
func (s *Scanner) indentation() bool {
	var col int
	for {
		col = 0
		for isWhitespace(s.ch) {
			switch s.ch {
			case ' ':
				col++
			case '\t':
				col += tabWidth - col%tabWidth
			}
			s.nextch()
		}
		if s.ch == '#' {
			s.skipComment()
		}
		if s.ch != '\n' {
			break
		}
		s.nextch()
	}
	if s.ch < 0 {
		return false
	}

	start := s.pos()
	top := s.indents[len(s.indents)-1]
	switch {
	case col > top:
		s.indents = append(s.indents, col)
		s.emit(syntax.Indent, start, "")
	case col < top:
		for col < top {
			s.indents = s.indents[:len(s.indents)-1]
			top = s.indents[len(s.indents)-1]
			s.emit(syntax.Dedent, start, "")
		}
		if col != top {
			s.error("unindent does not match any outer indentation level")
		}
	}
	return len(s.pending) > 0
}

// finish queues the lexemes that close the input: a NEWLINE ending an
// unterminated last line, a DEDENT per open block and EOF. Inside
// brackets no NEWLINE is synthesized, so the parser sees the input end
// in the middle of an expression.
func (s *Scanner) finish() {
	end := s.pos()
	if s.depth == 0 {
		if s.lineHasTokens {
			s.emit(syntax.Newline, end, "")
			s.lineHasTokens = false
		}
		for len(s.indents) > 1 {
			s.indents = s.indents[:len(s.indents)-1]
			s.emit(syntax.Dedent, end, "")
		}
	}
	s.emit(syntax.EOF, end, "")
	s.done = true
}

// skipWhitespace skips horizontal whitespace.
func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) {
		s.nextch()
	}
}

// skipComment skips a comment up to, but not including, the newline.
func (s *Scanner) skipComment() {
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// startLit begins accumulating a literal.
func (s *Scanner) startLit() {
	s.litBuf.Reset()
	s.litBuf.WriteRune(s.ch)
}

// continueLit adds the current character to the literal being accumulated.
func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
}

// stopLit ends literal accumulation and returns the accumulated string.
func (s *Scanner) stopLit() string {
	return s.litBuf.String()
}

// scanIdent scans an identifier, a keyword or a raw string prefix.
func (s *Scanner) scanIdent(start syntax.Pos) {
	s.startLit()
	s.nextch()

	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}

	lit := s.stopLit()
	if lit == "r" && (s.ch == '"' || s.ch == '\'') {
		s.scanString(start, true)
		return
	}
	s.emit(syntax.LookupKeyword(lit), start, lit)
}

// scanNumber scans an integer literal in decimal, hex, octal or binary.
func (s *Scanner) scanNumber(start syntax.Pos) {
	s.litBuf.Reset()

	if s.ch == '0' {
		s.continueLit()
		s.nextch()
		switch lower(s.ch) {
		case 'x':
			s.continueLit()
			s.nextch()
			s.scanDigits(isHexDigit, "hex")
		case 'o':
			s.continueLit()
			s.nextch()
			s.scanDigits(isOctalDigit, "octal")
		case 'b':
			s.continueLit()
			s.nextch()
			s.scanDigits(isBinaryDigit, "binary")
		default:
			s.scanDecimalDigits()
			if strings.Trim(s.litBuf.String(), "0") != "" {
				s.error("invalid decimal literal with leading zero; use 0o for octal")
				return
			}
		}
	} else {
		s.scanDecimalDigits()
	}

	switch {
	case s.ch == '.' && isDigit(s.peek()):
		s.error("floating-point literals are not supported")
		return
	case isLetter(s.ch) || isDigit(s.ch):
		s.error(fmt.Sprintf("invalid character %q in integer literal", s.ch))
		return
	}

	lit := s.litBuf.String()
	v, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			s.error(fmt.Sprintf("integer literal %s overflows int64", lit))
		} else {
			s.error(fmt.Sprintf("invalid integer literal %s", lit))
		}
		return
	}
	l := s.emit(syntax.Int, start, lit)
	l.Int = v
}

// scanDecimalDigits scans decimal digits.
func (s *Scanner) scanDecimalDigits() {
	for isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}
}

// scanDigits scans the digits following a 0x, 0o or 0b prefix.
func (s *Scanner) scanDigits(valid func(rune) bool, base string) {
	if !valid(s.ch) {
		s.error("invalid " + base + " digit")
		return
	}
	for valid(s.ch) {
		s.continueLit()
		s.nextch()
	}
	if isDigit(s.ch) {
		s.error("invalid " + base + " digit")
	}
}

// scanString scans a single, double or triple-quoted string literal.
// The lexeme text is the decoded value. Raw strings keep backslashes.
func (s *Scanner) scanString(start syntax.Pos, raw bool) {
	quote := s.ch
	s.nextch()
	triple := false
	if s.ch == quote && s.peek() == quote {
		s.nextch()
		s.nextch()
		triple = true
	}

	var b strings.Builder
	for {
		switch {
		case s.ch < 0:
			if triple {
				s.incomplete("unterminated triple-quoted string")
			} else {
				s.error("string not terminated")
			}
			return

		case s.ch == '\n' && !triple:
			s.error("string not terminated")
			return

		case s.ch == quote:
			if !triple {
				s.nextch()
				s.emit(syntax.String, start, b.String())
				return
			}
			if s.closesTriple(quote) {
				s.nextch()
				s.nextch()
				s.nextch()
				s.emit(syntax.String, start, b.String())
				return
			}
			b.WriteRune(s.ch)
			s.nextch()

		case s.ch == '\\' && raw:
			// A quote or backslash after \ is kept along with the
			// backslash and does not end the string.
			b.WriteRune(s.ch)
			s.nextch()
			if s.ch == quote || s.ch == '\\' {
				b.WriteRune(s.ch)
				s.nextch()
			}

		case s.ch == '\\':
			if !s.scanEscape(&b) {
				return
			}

		default:
			b.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// closesTriple reports whether s.ch and the two following bytes are quote.
func (s *Scanner) closesTriple(quote rune) bool {
	q := byte(quote)
	return s.next+1 < len(s.buf) && s.buf[s.next] == q && s.buf[s.next+1] == q
}

// scanEscape decodes an escape sequence into b.
// It reports false after an error.
func (s *Scanner) scanEscape(b *strings.Builder) bool {
	s.nextch() // skip \

	var r rune
	switch s.ch {
	case '\n':
		// line continuation
		s.nextch()
		return true
	case 'n':
		r = '\n'
	case 't':
		r = '\t'
	case 'r':
		r = '\r'
	case 'a':
		r = '\a'
	case 'b':
		r = '\b'
	case 'f':
		r = '\f'
	case 'v':
		r = '\v'
	case '0':
		r = 0
	case '\\', '\'', '"':
		r = s.ch
	case 'x':
		s.nextch()
		v, ok := s.scanHexEscape()
		if !ok {
			return false
		}
		b.WriteByte(byte(v))
		return true
	default:
		if s.ch < 0 {
			s.error("string not terminated")
		} else {
			s.error(fmt.Sprintf("unknown escape sequence: \\%c", s.ch))
		}
		return false
	}
	s.nextch()
	b.WriteRune(r)
	return true
}

// scanHexEscape scans the two digits of a \xNN escape sequence.
func (s *Scanner) scanHexEscape() (rune, bool) {
	var val rune
	for i := 0; i < 2; i++ {
		if !isHexDigit(s.ch) {
			s.error("invalid hex escape")
			return 0, false
		}
		val = val*16 + hexValue(s.ch)
		s.nextch()
	}
	return val, true
}

// hexValue returns the numeric value of a hex digit.
func hexValue(r rune) rune {
	switch {
	case '0' <= r && r <= '9':
		return r - '0'
	case 'a' <= lower(r) && lower(r) <= 'f':
		return lower(r) - 'a' + 10
	}
	return 0
}

// choose consumes the current character and returns yes if it is ch;
// otherwise it returns no.
func (s *Scanner) choose(ch rune, yes, no syntax.Token) syntax.Token {
	if s.ch == ch {
		s.nextch()
		return yes
	}
	return no
}

// scanOperator scans an operator, delimiter or bracket.
func (s *Scanner) scanOperator(start syntax.Pos) {
	ch := s.ch
	s.nextch()

	var tok syntax.Token
	switch ch {
	case '+':
		tok = s.choose('=', syntax.PlusEq, syntax.Plus)
	case '-':
		if s.ch == '>' {
			s.nextch()
			tok = syntax.Arrow
		} else {
			tok = s.choose('=', syntax.MinusEq, syntax.Minus)
		}
	case '*':
		if s.ch == '*' {
			s.nextch()
			tok = syntax.StarStar
		} else {
			tok = s.choose('=', syntax.StarEq, syntax.Star)
		}
	case '/':
		if s.ch != '/' {
			s.error("unexpected character '/'; use // for floor division")
			return
		}
		s.nextch()
		tok = s.choose('=', syntax.SlashSlashEq, syntax.SlashSlash)
	case '%':
		tok = s.choose('=', syntax.PercentEq, syntax.Percent)
	case '&':
		tok = s.choose('=', syntax.AmpEq, syntax.Amp)
	case '|':
		tok = s.choose('=', syntax.PipeEq, syntax.Pipe)
	case '^':
		tok = s.choose('=', syntax.CaretEq, syntax.Caret)
	case '~':
		tok = syntax.Tilde
	case '<':
		if s.ch == '<' {
			s.nextch()
			tok = s.choose('=', syntax.LtLtEq, syntax.LtLt)
		} else {
			tok = s.choose('=', syntax.Le, syntax.Lt)
		}
	case '>':
		if s.ch == '>' {
			s.nextch()
			tok = s.choose('=', syntax.GtGtEq, syntax.GtGt)
		} else {
			tok = s.choose('=', syntax.Ge, syntax.Gt)
		}
	case '=':
		tok = s.choose('=', syntax.EqEq, syntax.Eq)
	case '!':
		if s.ch != '=' {
			s.error("unexpected character '!'")
			return
		}
		s.nextch()
		tok = syntax.NotEq
	case ':':
		tok = syntax.Colon
	case ',':
		tok = syntax.Comma
	case ';':
		tok = syntax.Semi
	case '.':
		tok = syntax.Dot
	case '(':
		s.depth++
		tok = syntax.Lparen
	case '[':
		s.depth++
		tok = syntax.Lbrack
	case '{':
		s.depth++
		tok = syntax.Lbrace
	case ')':
		s.closeBracket()
		tok = syntax.Rparen
	case ']':
		s.closeBracket()
		tok = syntax.Rbrack
	case '}':
		s.closeBracket()
		tok = syntax.Rbrace
	}
	s.emit(tok, start, "")
}

func (s *Scanner) closeBracket() {
	if s.depth > 0 {
		s.depth--
	}
}
