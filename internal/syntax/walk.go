package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order, visiting children in
// source order. Nil children are skipped.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	// Statements
	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, v)
		}

	case *AssignStmt:
		Walk(n.LHS, v)
		Walk(n.RHS, v)

	case *ExprStmt:
		Walk(n.X, v)

	case *LoadStmt:
		Walk(n.Module, v)
		for _, b := range n.Bindings {
			Walk(b, v)
		}

	case *LoadBinding:
		// A bare string binding shares its span with Name.
		Walk(n.Local, v)
		Walk(n.Name, v)

	case *IfStmt:
		Walk(n.Cond, v)
		Walk(n.Body, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *ForStmt:
		Walk(n.Vars, v)
		Walk(n.X, v)
		Walk(n.Body, v)

	case *DefStmt:
		Walk(n.Name, v)
		for _, p := range n.Params {
			Walk(p, v)
		}
		if n.Result != nil {
			Walk(n.Result, v)
		}
		Walk(n.Body, v)

	// Parameters
	case *NormalParam:
		Walk(n.Name, v)
		if n.Type != nil {
			Walk(n.Type, v)
		}

	case *DefaultParam:
		Walk(n.Name, v)
		if n.Type != nil {
			Walk(n.Type, v)
		}
		Walk(n.Default, v)

	case *ArgsParam:
		Walk(n.Name, v)
		if n.Type != nil {
			Walk(n.Type, v)
		}

	case *KwArgsParam:
		Walk(n.Name, v)
		if n.Type != nil {
			Walk(n.Type, v)
		}

	// Arguments
	case *PositionalArg:
		Walk(n.X, v)

	case *NamedArg:
		Walk(n.Name, v)
		Walk(n.X, v)

	case *ArgsArg:
		Walk(n.X, v)

	case *KwArgsArg:
		Walk(n.X, v)

	// Expressions
	case *TupleExpr:
		for _, e := range n.Elems {
			Walk(e, v)
		}

	case *ListExpr:
		for _, e := range n.Elems {
			Walk(e, v)
		}

	case *DictExpr:
		for _, e := range n.Entries {
			Walk(e, v)
		}

	case *DictEntry:
		Walk(n.Key, v)
		Walk(n.Value, v)

	case *ListComp:
		Walk(n.Body, v)
		for _, c := range n.Clauses {
			Walk(c, v)
		}

	case *DictComp:
		Walk(n.Key, v)
		Walk(n.Value, v)
		for _, c := range n.Clauses {
			Walk(c, v)
		}

	case *ForClause:
		Walk(n.Vars, v)
		Walk(n.X, v)

	case *IfClause:
		Walk(n.Cond, v)

	case *UnaryExpr:
		Walk(n.X, v)

	case *BinaryExpr:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *CondExpr:
		Walk(n.True, v)
		Walk(n.Cond, v)
		Walk(n.False, v)

	case *LambdaExpr:
		for _, p := range n.Params {
			Walk(p, v)
		}
		Walk(n.Body, v)

	case *DotExpr:
		Walk(n.X, v)
		Walk(n.Name, v)

	case *CallExpr:
		Walk(n.Fn, v)
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *IndexExpr:
		Walk(n.X, v)
		Walk(n.Index, v)

	case *SliceExpr:
		Walk(n.X, v)
		for _, e := range []Expr{n.Lo, n.Hi, n.Step} {
			if e != nil {
				Walk(e, v)
			}
		}

	// Leaf nodes: Ident, Literal, BranchStmt, NoArgsParam
	// No children to visit
	}
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}
