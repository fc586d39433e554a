package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/you-not-fish/starling/internal/syntax"
)

// source is a character reader with position tracking.
// It decodes UTF-8 input and provides character-by-character access.
type source struct {
	// Input
	buf []byte // entire file

	// Position tracking
	line uint32 // current line number (1-based)
	col  uint32 // current column number (1-based, byte offset)

	// Current state
	ch   rune // current character, -1 for EOF
	offs int  // byte offset of ch in buf
	next int  // byte offset of the character after ch

	// Error handling
	errh func(line, col uint32, off int, msg string)
}

// newSource creates a source over buf and loads its first character.
// The errh function is called for each error; if nil, errors are silently ignored.
func newSource(buf []byte, errh func(line, col uint32, off int, msg string)) *source {
	s := &source{
		buf:  buf,
		line: 1,
		col:  0,  // incremented to 1 by the first nextch()
		ch:   -1, // sentinel: before the first character
		errh: errh,
	}
	s.nextch()
	return s
}

// nextch reads the next character from the source and updates position.
// Sets s.ch to -1 at EOF, where s.offs equals len(s.buf).
//
// Position tracking: (line, col) always refers to the position of s.ch after nextch() returns.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.offs = s.next
	if s.next >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.next:])
	if r == utf8.RuneError && width == 1 {
		s.error("invalid UTF-8 encoding")
	}
	s.ch = r
	s.next += width
}

// peek returns the character after s.ch without consuming anything.
func (s *source) peek() rune {
	if s.next >= len(s.buf) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.buf[s.next:])
	return r
}

// pos returns the byte offset of the current character.
func (s *source) pos() syntax.Pos {
	return syntax.Pos(s.offs)
}

// error reports a lexical error at the current position.
func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, s.offs, msg)
	}
}

// Character classification helpers

// isLetter reports whether r can start an identifier.
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

// isDigit reports whether r is a decimal digit (0-9).
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isHexDigit reports whether r is a hexadecimal digit (0-9, a-f, A-F).
func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= lower(r) && lower(r) <= 'f'
}

// isOctalDigit reports whether r is an octal digit (0-7).
func isOctalDigit(r rune) bool {
	return '0' <= r && r <= '7'
}

// isBinaryDigit reports whether r is a binary digit (0 or 1).
func isBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}

// lower returns the lowercase version of r if r is an ASCII letter.
// OR-ing with 0x20 maps 'A'..'Z' onto 'a'..'z'.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

// isWhitespace reports whether r is horizontal whitespace.
// Newlines are significant and handled separately.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f'
}

// isOperatorStart reports whether r can start an operator or delimiter.
func isOperatorStart(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '&', '|', '^', '~', '<', '>', '=', '!', ':',
		'(', ')', '[', ']', '{', '}', ',', ';', '.':
		return true
	}
	return false
}
