package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/you-not-fish/starling/internal/lexer"
	"github.com/you-not-fish/starling/internal/syntax"
)

const (
	promptMain = ">>> "
	promptCont = "... "
)

// runREPL reads statements from the terminal and prints their AST.
func runREPL() int {
	fe, err := frontendFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	fmt.Printf("starling %s (dialect %s); end input with Ctrl-D\n", Version, fe.dialect)
	return fe.replLoop(ln.Prompt, os.Stdout, os.Stderr, ln.AppendHistory)
}

// replLoop runs the read-parse-print loop until prompt reports io.EOF.
// Each entry is parsed as a file of its own.
func (fe *frontend) replLoop(prompt func(string) (string, error), out, errOut io.Writer, history func(string)) int {
	for n := 1; ; n++ {
		src, ok := readEntry(fe.dialect, prompt)
		if !ok {
			fmt.Fprintln(out)
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		r := fe.parseSource(fmt.Sprintf("<stdin:%d>", n), []byte(src+"\n"))
		if history != nil {
			history(src)
		}
		if r.err != nil {
			fe.render.Render(errOut, r.err)
			continue
		}
		syntax.Fprint(out, r.root)
	}
}

// readEntry reads lines until they form a complete entry. Input is
// incomplete while parsing fails only because it ended early, and a
// block stays open while its lines are indented.
func readEntry(d syntax.Dialect, prompt func(string) (string, error)) (string, bool) {
	var b strings.Builder

	for {
		p := promptMain
		if b.Len() > 0 {
			p = promptCont
		}
		line, err := prompt(p)
		if errors.Is(err, io.EOF) {
			if b.Len() == 0 {
				return "", false
			}
			return b.String(), true
		}
		if err != nil {
			// Ctrl-C discards the entry
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if incomplete(src, d) || (strings.Contains(src, "\n") && isIndented(line)) {
			continue
		}
		return src, true
	}
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// incomplete reports whether src fails to parse only because it ends
// too early.
func incomplete(src string, d syntax.Dialect) bool {
	buf := []byte(src + "\n")
	toks, err := lexer.Scan(1, buf)
	if err != nil {
		return syntax.IsIncomplete(err)
	}
	file := syntax.MakeSpan(1, 0, syntax.Pos(len(buf)))
	_, err = syntax.Parse(toks, nil, file, d)
	return syntax.IsIncomplete(err)
}
