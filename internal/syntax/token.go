// Package syntax implements the syntactic analysis of starling, a small
// Python-like configuration language.
package syntax

import "fmt"

// Token represents the kind of a lexical token.
type Token uint8

const (
	// Special tokens
	EOF     Token = iota // end of input
	Newline              // logical line break
	Indent               // increase of indentation
	Dedent               // decrease of indentation

	// Payload-bearing tokens
	Name   // identifier: foo, bar
	Int    // integer literal: 42, 0x2a
	String // string literal: "x", 'y'

	// Keywords
	And
	Break
	Continue
	Def
	Elif
	Else
	For
	If
	In
	Lambda
	Load
	Not
	Or
	Pass
	Return

	// Punctuation
	Comma      // ,
	Semi       // ;
	Colon      // :
	Dot        // .
	Arrow      // ->
	Eq         // =
	EqEq       // ==
	NotEq      // !=
	Lt         // <
	Gt         // >
	Le         // <=
	Ge         // >=
	Plus       // +
	Minus      // -
	Star       // *
	StarStar   // **
	Percent    // %
	SlashSlash // //
	Amp        // &
	Pipe       // |
	Caret      // ^
	Tilde      // ~
	LtLt       // <<
	GtGt       // >>

	// Augmented assignment
	PlusEq       // +=
	MinusEq      // -=
	StarEq       // *=
	SlashSlashEq // //=
	PercentEq    // %=
	AmpEq        // &=
	PipeEq       // |=
	CaretEq      // ^=
	LtLtEq       // <<=
	GtGtEq       // >>=

	// Brackets
	Lparen // (
	Rparen // )
	Lbrack // [
	Rbrack // ]
	Lbrace // {
	Rbrace // }

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	EOF:     "EOF",
	Newline: "NEWLINE",
	Indent:  "INDENT",
	Dedent:  "DEDENT",

	Name:   "identifier",
	Int:    "integer literal",
	String: "string literal",

	And:      "and",
	Break:    "break",
	Continue: "continue",
	Def:      "def",
	Elif:     "elif",
	Else:     "else",
	For:      "for",
	If:       "if",
	In:       "in",
	Lambda:   "lambda",
	Load:     "load",
	Not:      "not",
	Or:       "or",
	Pass:     "pass",
	Return:   "return",

	Comma:      ",",
	Semi:       ";",
	Colon:      ":",
	Dot:        ".",
	Arrow:      "->",
	Eq:         "=",
	EqEq:       "==",
	NotEq:      "!=",
	Lt:         "<",
	Gt:         ">",
	Le:         "<=",
	Ge:         ">=",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	StarStar:   "**",
	Percent:    "%",
	SlashSlash: "//",
	Amp:        "&",
	Pipe:       "|",
	Caret:      "^",
	Tilde:      "~",
	LtLt:       "<<",
	GtGt:       ">>",

	PlusEq:       "+=",
	MinusEq:      "-=",
	StarEq:       "*=",
	SlashSlashEq: "//=",
	PercentEq:    "%=",
	AmpEq:        "&=",
	PipeEq:       "|=",
	CaretEq:      "^=",
	LtLtEq:       "<<=",
	GtGtEq:       ">>=",

	Lparen: "(",
	Rparen: ")",
	Lbrack: "[",
	Rbrack: "]",
	Lbrace: "{",
	Rbrace: "}",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= And && t <= Return
}

// IsStructural reports whether t is a synthesized layout token
// (NEWLINE, INDENT, DEDENT or EOF). Structural tokens never contribute
// to node spans.
func (t Token) IsStructural() bool {
	return t <= Dedent
}

// keywords maps keyword strings to their token type.
var keywords = map[string]Token{
	"and":      And,
	"break":    Break,
	"continue": Continue,
	"def":      Def,
	"elif":     Elif,
	"else":     Else,
	"for":      For,
	"if":       If,
	"in":       In,
	"lambda":   Lambda,
	"load":     Load,
	"not":      Not,
	"or":       Or,
	"pass":     Pass,
	"return":   Return,
}

// LookupKeyword returns the token for the given identifier string.
// If the identifier is a keyword, returns the keyword token.
// Otherwise, returns Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return Name
}

// Lexeme is one element of the token stream consumed by the parser.
type Lexeme struct {
	Tok  Token
	Span Span
	Text string // identifier name or decoded string value
	Int  int64  // decoded value of an Int token
}

// String returns a short description of the lexeme for diagnostics.
func (l Lexeme) String() string {
	switch l.Tok {
	case Name:
		return l.Text
	case Int:
		return fmt.Sprint(l.Int)
	case String:
		return fmt.Sprintf("%q", l.Text)
	}
	return l.Tok.String()
}
