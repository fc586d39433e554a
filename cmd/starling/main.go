// Package main implements the starling front-end driver: it tokenizes
// and parses configuration files, reports errors with source snippets,
// and offers watch and interactive modes.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/you-not-fish/starling/internal/dialect"
	"github.com/you-not-fish/starling/internal/lexer"
	"github.com/you-not-fish/starling/internal/logger"
	"github.com/you-not-fish/starling/internal/scope"
	"github.com/you-not-fish/starling/internal/syntax"
)

// Driver flags
var (
	emitTokens  = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST     = flag.Bool("emit-ast", false, "Output AST")
	astFormat   = flag.String("ast-format", "text", "AST output format (text or json)")
	emitScope   = flag.Bool("emit-scope", false, "Output the names bound by each scope")
	dialectName = flag.String("dialect", envOr("STARLING_DIALECT", "standard"), "Dialect as name or name@version ("+strings.Join(dialect.Names(), ", ")+")")
	enable      = flag.String("enable", "", "Comma-separated features to enable on top of the dialect")
	disable     = flag.String("disable", "", "Comma-separated features to disable")
	jobs        = flag.Int("j", runtime.NumCPU(), "Number of files to check in parallel")
	watch       = flag.Bool("watch", false, "Re-check files whenever they change")
	repl        = flag.Bool("repl", false, "Read and parse statements interactively")
	logLevel    = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	logFormat   = flag.String("log-format", "text", "Log format (text or json)")
	noColor     = flag.Bool("no-color", false, "Disable colored diagnostics")
	version     = flag.Bool("version", false, "Print version")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "starling %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: starling [options] <file.star>...\n")
		fmt.Fprintf(os.Stderr, "       starling -repl\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("starling version %s\n", Version)
		fmt.Printf("language version %s\n", dialect.LatestVersion)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *repl {
		os.Exit(runREPL())
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file")
		fmt.Fprintln(os.Stderr, "usage: starling [options] <file.star>...")
		os.Exit(1)
	}

	switch {
	case *emitTokens:
		os.Exit(runEmitTokens(args[0]))
	case *emitAST:
		os.Exit(runEmitAST(args[0]))
	case *emitScope:
		os.Exit(runEmitScope(args[0]))
	case *watch:
		os.Exit(runWatch(args))
	}
	os.Exit(runCheck(args))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setupLogging() error {
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = *logFormat
	_, err = logger.Init(cfg)
	return err
}

// loadDialect resolves -dialect, then applies -enable and -disable.
func loadDialect() (*dialect.Policy, error) {
	p, err := dialect.Parse(*dialectName)
	if err != nil {
		return nil, err
	}
	if p, err = p.Toggle(*enable, true); err != nil {
		return nil, err
	}
	return p.Toggle(*disable, false)
}

// runCheck parses every file and reports the errors found.
func runCheck(files []string) int {
	fe, err := frontendFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	code := 0
	for _, r := range fe.checkAll(files, *jobs) {
		if !fe.report(os.Stdout, os.Stderr, r, false) {
			code = 1
		}
	}
	return code
}

// runEmitAST parses the input file and outputs the AST.
func runEmitAST(filename string) int {
	fe, err := frontendFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	r := fe.parseFile(filename)
	if r.err != nil {
		fe.render.Render(os.Stderr, r.err)
		return 1
	}

	switch *astFormat {
	case "json":
		if err := syntax.FprintJSON(os.Stdout, r.root); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	case "text":
		syntax.Fprint(os.Stdout, r.root)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown AST format %q\n", *astFormat)
		return 2
	}
	return 0
}

// runEmitScope parses the input file and outputs its scope tree.
func runEmitScope(filename string) int {
	fe, err := frontendFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	r := fe.parseFile(filename)
	if r.err != nil {
		fe.render.Render(os.Stderr, r.err)
		return 1
	}
	fmt.Print(scope.Collect(r.root))
	return 0
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	fe, err := frontendFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	id, _ := fe.cm.AddFile(filename, src)
	s := lexer.NewScanner(id, src)

	// Print header
	fmt.Printf("%-24s %-16s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-24s %-16s %s\n", strings.Repeat("-", 24), strings.Repeat("-", 16), strings.Repeat("-", 20))

	for {
		l := s.Next()
		if s.Err() != nil {
			break
		}
		pos := fe.cm.Position(id, l.Span.Start)
		fmt.Printf("%-24s %-16s %s\n", pos, l.Tok, formatLexeme(l))
		if l.Tok == syntax.EOF {
			break
		}
	}

	if err := s.Err(); err != nil {
		fe.render.Render(os.Stderr, err)
		return 1
	}
	return 0
}

// formatLexeme returns the payload of a lexeme for display.
func formatLexeme(l syntax.Lexeme) string {
	switch l.Tok {
	case syntax.Name:
		return l.Text
	case syntax.Int:
		return strconv.FormatInt(l.Int, 10)
	case syntax.String:
		return formatLiteral(l.Text)
	}
	return ""
}

// formatLiteral formats a string value for display, escaping special characters.
func formatLiteral(lit string) string {
	var b strings.Builder
	b.WriteRune('"')
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case 0:
			b.WriteString("\\0")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune('"')
	return b.String()
}
