// Package codemap keeps the source text of parsed files and resolves
// byte offsets to line and column numbers.
package codemap

import (
	"fmt"
	"sort"
	"sync"

	"github.com/you-not-fish/starling/internal/syntax"
)

// File is one registered source file.
type File struct {
	ID    syntax.FileID
	Name  string
	Src   []byte
	lines []int // byte offset of the start of each line
}

// Span returns the span covering the whole file.
func (f *File) Span() syntax.Span {
	return syntax.MakeSpan(f.ID, 0, syntax.Pos(len(f.Src)))
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.lines)
}

// Position resolves off to a 1-based line and byte column.
// Offsets past the end are clamped to the end of the file.
func (f *File) Position(off syntax.Pos) syntax.Position {
	o := int(off)
	if o > len(f.Src) {
		o = len(f.Src)
	}
	// index of the last line starting at or before o
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > o }) - 1
	return syntax.NewPosition(f.Name, uint32(i+1), uint32(o-f.lines[i]+1))
}

// Line returns the text of line n (1-based) without its line break.
func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lines) {
		return "", false
	}
	start := f.lines[n-1]
	end := len(f.Src)
	if n < len(f.lines) {
		end = f.lines[n] - 1 // drop '\n'
	}
	if end > start && f.Src[end-1] == '\r' {
		end--
	}
	return string(f.Src[start:end]), true
}

func lineStarts(src []byte) []int {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// Map is a registry of source files. It implements syntax.CodeMap and
// is safe for concurrent use.
type Map struct {
	mu     sync.RWMutex
	files  []*File // files[id-1]
	byName map[string]syntax.FileID
}

// New returns an empty Map.
func New() *Map {
	return &Map{byName: make(map[string]syntax.FileID)}
}

// AddFile registers src under name and returns its identifier and the
// span covering it. File identifiers start at 1.
//
// Adding a name that is already registered replaces its source and
// keeps its identifier, so re-reading a file does not grow the map.
// Spans from the earlier version then resolve against the new text.
func (m *Map) AddFile(name string, src []byte) (syntax.FileID, syntax.Span) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byName[name]
	if !ok {
		id = syntax.FileID(len(m.files) + 1)
		m.files = append(m.files, nil)
		m.byName[name] = id
	}
	f := &File{
		ID:    id,
		Name:  name,
		Src:   src,
		lines: lineStarts(src),
	}
	m.files[id-1] = f
	return f.ID, f.Span()
}

// File returns the file registered under id.
func (m *Map) File(id syntax.FileID) (*File, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id == 0 || int(id) > len(m.files) {
		return nil, false
	}
	return m.files[id-1], true
}

// Position implements syntax.CodeMap. Unknown files yield the zero
// Position.
func (m *Map) Position(id syntax.FileID, off syntax.Pos) syntax.Position {
	f, ok := m.File(id)
	if !ok {
		return syntax.Position{}
	}
	return f.Position(off)
}

// Line returns line n of the file registered under id.
func (m *Map) Line(id syntax.FileID, n int) (string, error) {
	f, ok := m.File(id)
	if !ok {
		return "", fmt.Errorf("codemap: unknown file %d", id)
	}
	line, ok := f.Line(n)
	if !ok {
		return "", fmt.Errorf("codemap: %s has no line %d", f.Name, n)
	}
	return line, nil
}

// Len returns the number of registered files.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
