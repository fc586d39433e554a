package syntax

import "fmt"

// Pos is a byte offset into a source file.
type Pos uint32

// FileID identifies a source file known to a CodeMap.
// The core never interprets it.
type FileID uint32

// Span is a half-open byte range [Start, End) within one source file.
// The zero value is the empty span at offset 0 of file 0.
type Span struct {
	File  FileID
	Start Pos
	End   Pos
}

// MakeSpan returns the span [start, end) in file.
func MakeSpan(file FileID, start, end Pos) Span {
	return Span{File: file, Start: start, End: end}
}

// IsValid reports whether s is well formed (Start <= End).
func (s Span) IsValid() bool {
	return s.Start <= s.End
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return int(s.End - s.Start)
}

// Contains reports whether inner lies entirely within s.
func (s Span) Contains(inner Span) bool {
	return s.File == inner.File && s.Start <= inner.Start && inner.End <= s.End
}

// Union returns the smallest span covering both s and other.
// Spans from different files cannot be merged; s is returned unchanged.
func (s Span) Union(other Span) Span {
	if s.File != other.File {
		return s
	}
	u := s
	if other.Start < u.Start {
		u.Start = other.Start
	}
	if other.End > u.End {
		u.End = other.End
	}
	return u
}

// String returns the span as "start-end" (byte offsets).
func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Position is a human-readable source location produced by a CodeMap.
// The zero value is an invalid position.
type Position struct {
	Filename string // source file name
	Line     uint32 // 1-based line number
	Col      uint32 // 1-based column number (byte offset in line)
}

// NewPosition creates a Position with the given filename, line, and column.
func NewPosition(filename string, line, col uint32) Position {
	return Position{Filename: filename, Line: line, Col: col}
}

// String returns "filename:line:col", or "line:col" if filename is empty.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether the position is valid.
// A position is valid if line > 0.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// CodeMap resolves byte offsets to human-readable positions.
// Implementations must be safe for concurrent use by multiple parses.
type CodeMap interface {
	Position(file FileID, off Pos) Position
}
