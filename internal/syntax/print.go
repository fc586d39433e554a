package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
// Each node is printed on its own line with its span.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// field prints a labeled child one level deeper. Nil children are omitted.
func (p *printer) field(label string, node Node) {
	if isNil(node) {
		return
	}
	p.printf("%s:\n", label)
	p.indent++
	p.print(node)
	p.indent--
}

// list prints a labeled sequence of children. Empty sequences are omitted.
func list[T Node](p *printer, label string, nodes []T) {
	if len(nodes) == 0 {
		return
	}
	p.printf("%s:\n", label)
	p.indent++
	for _, n := range nodes {
		p.print(n)
	}
	p.indent--
}

// isNil reports whether node is nil, including typed nil pointers
// stored in optional fields.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Ident:
		return n == nil
	case *BlockStmt:
		return n == nil
	}
	return false
}

func (p *printer) print(node Node) {
	if isNil(node) {
		return
	}

	switch n := node.(type) {
	case *BlockStmt:
		p.printf("BlockStmt %s\n", n.span)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *ReturnStmt:
		p.printf("ReturnStmt %s\n", n.span)
		p.indent++
		p.print(n.Result)
		p.indent--

	case *BranchStmt:
		p.printf("BranchStmt %s %s\n", n.span, n.Tok)

	case *AssignStmt:
		p.printf("AssignStmt %s %s\n", n.span, n.Op)
		p.indent++
		p.field("LHS", n.LHS)
		p.field("RHS", n.RHS)
		p.indent--

	case *ExprStmt:
		p.printf("ExprStmt %s\n", n.span)
		p.indent++
		p.print(n.X)
		p.indent--

	case *LoadStmt:
		p.printf("LoadStmt %s %q %s\n", n.span, n.Module.Str, n.Visibility)
		p.indent++
		for _, b := range n.Bindings {
			p.printf("%s = %q %s\n", b.Local.Name, b.Name.Str, b.span)
		}
		p.indent--

	case *IfStmt:
		p.printf("IfStmt %s\n", n.span)
		p.indent++
		p.field("Cond", n.Cond)
		p.field("Body", n.Body)
		p.field("Else", n.Else)
		p.indent--

	case *ForStmt:
		p.printf("ForStmt %s\n", n.span)
		p.indent++
		p.field("Vars", n.Vars)
		p.field("X", n.X)
		p.field("Body", n.Body)
		p.indent--

	case *DefStmt:
		p.printf("DefStmt %s %s\n", n.span, n.Name.Name)
		p.indent++
		list(p, "Params", n.Params)
		p.field("Result", n.Result)
		p.field("Body", n.Body)
		p.indent--

	case *NormalParam:
		p.printf("NormalParam %s %s\n", n.span, n.Name.Name)
		p.indent++
		p.field("Type", n.Type)
		p.indent--

	case *DefaultParam:
		p.printf("DefaultParam %s %s\n", n.span, n.Name.Name)
		p.indent++
		p.field("Type", n.Type)
		p.field("Default", n.Default)
		p.indent--

	case *ArgsParam:
		p.printf("ArgsParam %s %s\n", n.span, n.Name.Name)
		p.indent++
		p.field("Type", n.Type)
		p.indent--

	case *KwArgsParam:
		p.printf("KwArgsParam %s %s\n", n.span, n.Name.Name)
		p.indent++
		p.field("Type", n.Type)
		p.indent--

	case *NoArgsParam:
		p.printf("NoArgsParam %s\n", n.span)

	case *PositionalArg:
		p.printf("PositionalArg %s\n", n.span)
		p.indent++
		p.print(n.X)
		p.indent--

	case *NamedArg:
		p.printf("NamedArg %s %s\n", n.span, n.Name.Name)
		p.indent++
		p.print(n.X)
		p.indent--

	case *ArgsArg:
		p.printf("ArgsArg %s\n", n.span)
		p.indent++
		p.print(n.X)
		p.indent--

	case *KwArgsArg:
		p.printf("KwArgsArg %s\n", n.span)
		p.indent++
		p.print(n.X)
		p.indent--

	case *Ident:
		p.printf("Ident %s %s\n", n.span, n.Name)

	case *Literal:
		if n.Kind == IntLit {
			p.printf("Literal %s %d\n", n.span, n.Int)
		} else {
			p.printf("Literal %s %q\n", n.span, n.Str)
		}

	case *TupleExpr:
		p.printf("TupleExpr %s\n", n.span)
		p.indent++
		for _, e := range n.Elems {
			p.print(e)
		}
		p.indent--

	case *ListExpr:
		p.printf("ListExpr %s\n", n.span)
		p.indent++
		for _, e := range n.Elems {
			p.print(e)
		}
		p.indent--

	case *DictExpr:
		p.printf("DictExpr %s\n", n.span)
		p.indent++
		for _, e := range n.Entries {
			p.print(e)
		}
		p.indent--

	case *DictEntry:
		p.printf("DictEntry %s\n", n.span)
		p.indent++
		p.field("Key", n.Key)
		p.field("Value", n.Value)
		p.indent--

	case *ListComp:
		p.printf("ListComp %s\n", n.span)
		p.indent++
		p.field("Body", n.Body)
		list(p, "Clauses", n.Clauses)
		p.indent--

	case *DictComp:
		p.printf("DictComp %s\n", n.span)
		p.indent++
		p.field("Key", n.Key)
		p.field("Value", n.Value)
		list(p, "Clauses", n.Clauses)
		p.indent--

	case *ForClause:
		p.printf("ForClause %s\n", n.span)
		p.indent++
		p.field("Vars", n.Vars)
		p.field("X", n.X)
		p.indent--

	case *IfClause:
		p.printf("IfClause %s\n", n.span)
		p.indent++
		p.print(n.Cond)
		p.indent--

	case *UnaryExpr:
		p.printf("UnaryExpr %s %s\n", n.span, n.Op)
		p.indent++
		p.print(n.X)
		p.indent--

	case *BinaryExpr:
		p.printf("BinaryExpr %s %s\n", n.span, n.Op)
		p.indent++
		p.field("X", n.X)
		p.field("Y", n.Y)
		p.indent--

	case *CondExpr:
		p.printf("CondExpr %s\n", n.span)
		p.indent++
		p.field("Cond", n.Cond)
		p.field("True", n.True)
		p.field("False", n.False)
		p.indent--

	case *LambdaExpr:
		p.printf("LambdaExpr %s\n", n.span)
		p.indent++
		list(p, "Params", n.Params)
		p.field("Body", n.Body)
		p.indent--

	case *DotExpr:
		p.printf("DotExpr %s %s\n", n.span, n.Name.Name)
		p.indent++
		p.print(n.X)
		p.indent--

	case *CallExpr:
		p.printf("CallExpr %s\n", n.span)
		p.indent++
		p.field("Fn", n.Fn)
		list(p, "Args", n.Args)
		p.indent--

	case *IndexExpr:
		p.printf("IndexExpr %s\n", n.span)
		p.indent++
		p.field("X", n.X)
		p.field("Index", n.Index)
		p.indent--

	case *SliceExpr:
		p.printf("SliceExpr %s\n", n.span)
		p.indent++
		p.field("X", n.X)
		p.field("Lo", n.Lo)
		p.field("Hi", n.Hi)
		p.field("Step", n.Step)
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}
