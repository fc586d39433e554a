// Package diag renders front-end errors for humans: a header naming
// the problem, the location, and the offending source line with the
// error span underlined.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/you-not-fish/starling/internal/codemap"
	"github.com/you-not-fish/starling/internal/syntax"
)

// ANSI escape sequences used when Color is set.
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
	colorRed   = "\x1b[1;31m"
	colorBlue  = "\x1b[1;34m"
)

// Renderer formats errors against the sources held in Map.
type Renderer struct {
	Map   *codemap.Map
	Color bool
}

// NewRenderer returns a Renderer whose Color setting follows whether
// out is a terminal.
func NewRenderer(m *codemap.Map, out *os.File) *Renderer {
	return &Renderer{Map: m, Color: IsTerminal(int(out.Fd()))}
}

// Render writes err to w. A *syntax.Error is shown with its source
// snippet; any other error is shown as a plain header.
//
//	syntax error: unexpected "=", expected expression
//	 --> config.star:1:5
//	  |
//	1 | x = = 1
//	  |     ^
func (r *Renderer) Render(w io.Writer, err error) {
	e, ok := syntax.AsError(err)
	if !ok {
		r.header(w, "error", err.Error())
		return
	}
	r.header(w, e.Kind.String(), e.Msg)

	pos := r.position(e)
	if !pos.IsValid() {
		return
	}
	fmt.Fprintf(w, " %s %s\n", r.paint(colorBlue, "-->"), pos)

	if r.Map == nil {
		return
	}
	line, lerr := r.Map.Line(e.Span.File, int(pos.Line))
	if lerr != nil {
		return
	}

	num := fmt.Sprint(pos.Line)
	pad := strings.Repeat(" ", len(num))
	bar := r.paint(colorBlue, "|")
	fmt.Fprintf(w, "%s %s\n", pad, bar)
	fmt.Fprintf(w, "%s %s %s\n", r.paint(colorBlue, num), bar, line)
	fmt.Fprintf(w, "%s %s %s\n", pad, bar, r.underline(line, int(pos.Col), e.Span.Len()))
}

func (r *Renderer) header(w io.Writer, label, msg string) {
	fmt.Fprintf(w, "%s%s\n", r.paint(colorRed, label+":"), r.paint(colorBold, " "+msg))
}

// position prefers a position computed from Map, which carries the
// file name, over the one recorded in the error.
func (r *Renderer) position(e *syntax.Error) syntax.Position {
	if r.Map != nil {
		if pos := r.Map.Position(e.Span.File, e.Span.Start); pos.IsValid() {
			return pos
		}
	}
	return e.Pos
}

// underline returns the marker line for a span of n bytes starting at
// byte column col of line. Tabs before the span are kept so the
// markers line up. The markers stop at the end of the line and are
// at least one wide.
func (r *Renderer) underline(line string, col, n int) string {
	var b strings.Builder
	start := col - 1
	if start > len(line) {
		start = len(line)
	}
	for i := 0; i < start; i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	if rest := len(line) - start; n > rest {
		n = rest
	}
	if n < 1 {
		n = 1
	}
	b.WriteString(r.paint(colorRed, strings.Repeat("^", n)))
	return b.String()
}

func (r *Renderer) paint(color, s string) string {
	if !r.Color {
		return s
	}
	return color + s + colorReset
}
