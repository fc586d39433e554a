package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/you-not-fish/starling/internal/codemap"
	"github.com/you-not-fish/starling/internal/diag"
	"github.com/you-not-fish/starling/internal/lexer"
	"github.com/you-not-fish/starling/internal/logger"
	"github.com/you-not-fish/starling/internal/syntax"
)

// frontend ties together the code map, the dialect and the error
// renderer shared by every file a command parses. It is safe for
// concurrent use.
type frontend struct {
	cm      *codemap.Map
	dialect syntax.Dialect
	log     *slog.Logger
	render  *diag.Renderer
}

func newFrontend(d syntax.Dialect, log *slog.Logger, color bool) *frontend {
	cm := codemap.New()
	return &frontend{
		cm:      cm,
		dialect: d,
		log:     log,
		render:  &diag.Renderer{Map: cm, Color: color},
	}
}

// frontendFromFlags builds a frontend from the command-line flags.
func frontendFromFlags() (*frontend, error) {
	d, err := loadDialect()
	if err != nil {
		return nil, err
	}
	color := !*noColor && diag.IsTerminal(int(os.Stderr.Fd()))
	return newFrontend(d, slog.Default(), color), nil
}

// result is the outcome of parsing one file.
type result struct {
	file   string
	tokens int
	root   *syntax.BlockStmt
	err    error
}

func (fe *frontend) parseFile(filename string) result {
	src, err := os.ReadFile(filename)
	if err != nil {
		return result{file: filename, err: err}
	}
	return fe.parseSource(filename, src)
}

func (fe *frontend) parseSource(name string, src []byte) result {
	start := time.Now()
	id, span := fe.cm.AddFile(name, src)

	toks, err := lexer.Scan(id, src)
	if err != nil {
		logger.LogFailed(fe.log, name, err)
		return result{file: name, err: err}
	}
	root, err := syntax.Parse(toks, fe.cm, span, fe.dialect)
	if err != nil {
		logger.LogFailed(fe.log, name, err)
		return result{file: name, tokens: len(toks), err: err}
	}

	logger.LogParsed(fe.log, name, len(toks), len(root.Stmts), time.Since(start))
	return result{file: name, tokens: len(toks), root: root}
}

// checkAll parses files with at most jobs parses in flight. Results
// are returned in input order.
func (fe *frontend) checkAll(files []string, jobs int) []result {
	results := make([]result, len(files))
	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = fe.parseFile(f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// report prints the outcome of r and reports whether it succeeded.
// Successes are only printed when verbose is set.
func (fe *frontend) report(out, errOut io.Writer, r result, verbose bool) bool {
	if r.err != nil {
		fe.render.Render(errOut, r.err)
		return false
	}
	if verbose {
		fmt.Fprintf(out, "%s: ok (%d statements)\n", r.file, len(r.root.Stmts))
	}
	return true
}
