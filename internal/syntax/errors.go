package syntax

import "errors"

// ErrorKind classifies a parse failure.
type ErrorKind uint8

const (
	SyntaxError   ErrorKind = iota // token stream does not match the grammar
	DialectError                   // construct disabled by the dialect
	SemanticError                  // ordering or uniqueness rule violated
)

func (k ErrorKind) String() string {
	switch k {
	case DialectError:
		return "dialect error"
	case SemanticError:
		return "semantic error"
	}
	return "syntax error"
}

// Error describes the first problem found in the input.
type Error struct {
	Kind    ErrorKind
	Span    Span     // offending token or construct
	Pos     Position // start of Span, if a CodeMap was available
	Msg     string
	Feature Feature // denied feature, for DialectError only

	atEOF bool
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// Incomplete reports whether the error was caused by the input ending
// before the construct under way was finished. Interactive front ends
// use it to keep reading lines.
func (e *Error) Incomplete() bool {
	return e.Kind == SyntaxError && e.atEOF
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsIncomplete reports whether err is an *Error for which Incomplete is true.
func IsIncomplete(err error) bool {
	e, ok := AsError(err)
	return ok && e.Incomplete()
}

// NewError creates an error of the given kind. Collaborators such as
// lexers use it so that all front-end failures share one type.
func NewError(kind ErrorKind, span Span, pos Position, msg string) *Error {
	return &Error{Kind: kind, Span: span, Pos: pos, Msg: msg}
}

// NewIncompleteError is like NewError for a SyntaxError caused by
// premature end of input, such as an unterminated triple-quoted string.
func NewIncompleteError(span Span, pos Position, msg string) *Error {
	return &Error{Kind: SyntaxError, Span: span, Pos: pos, Msg: msg, atEOF: true}
}
