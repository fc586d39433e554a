package scope

import "github.com/you-not-fish/starling/internal/syntax"

// Collect builds the scope tree of a parsed file. Module-level names
// bound by load take the visibility recorded on the load statement;
// every other module-level name is public. Names bound inside a
// function, lambda or comprehension are private to it.
//
// A def scope lists its parameters first, then the names its body
// binds. Nested defs contribute only their own name to the enclosing
// scope.
func Collect(root *syntax.BlockStmt) *Scope {
	c := &collector{}
	module := NewScope(nil, root.Span(), "module")
	c.stmts(module, root.Stmts)
	return module
}

type collector struct{}

func (c *collector) stmts(s *Scope, list []syntax.Stmt) {
	for _, st := range list {
		c.stmt(s, st)
	}
}

func (c *collector) stmt(s *Scope, st syntax.Stmt) {
	switch st := st.(type) {
	case *syntax.BlockStmt:
		c.stmts(s, st.Stmts)

	case *syntax.ExprStmt:
		c.expr(s, st.X)

	case *syntax.ReturnStmt:
		if st.Result != nil {
			c.expr(s, st.Result)
		}

	case *syntax.AssignStmt:
		c.expr(s, st.RHS)
		c.targets(s, st.LHS, Assigned)

	case *syntax.LoadStmt:
		for _, b := range st.Bindings {
			s.Insert(&Binding{
				Name:       b.Local.Name,
				Kind:       Loaded,
				Visibility: st.Visibility,
				Span:       b.Local.Span(),
			})
		}

	case *syntax.IfStmt:
		c.expr(s, st.Cond)
		c.stmts(s, st.Body.Stmts)
		if st.Else != nil {
			c.stmt(s, st.Else)
		}

	case *syntax.ForStmt:
		c.expr(s, st.X)
		c.targets(s, st.Vars, LoopVar)
		c.stmts(s, st.Body.Stmts)

	case *syntax.DefStmt:
		for _, p := range st.Params {
			c.paramExprs(s, p)
		}
		if st.Result != nil {
			c.expr(s, st.Result)
		}
		c.bind(s, st.Name, Function)

		fn := NewScope(s, st.Span(), "function "+st.Name.Name)
		c.params(fn, st.Params)
		c.stmts(fn, st.Body.Stmts)
	}
}

// bind inserts a name in s. Names are public only at module level.
func (c *collector) bind(s *Scope, id *syntax.Ident, kind Kind) {
	vis := syntax.Private
	if s.parent == nil {
		vis = syntax.Public
	}
	s.Insert(&Binding{Name: id.Name, Kind: kind, Visibility: vis, Span: id.Span()})
}

// targets binds the identifiers of an assignment or loop target.
// Attribute and index targets bind nothing but their operands may
// contain nested scopes.
func (c *collector) targets(s *Scope, x syntax.Expr, kind Kind) {
	switch x := x.(type) {
	case *syntax.Ident:
		c.bind(s, x, kind)
	case *syntax.TupleExpr:
		for _, e := range x.Elems {
			c.targets(s, e, kind)
		}
	case *syntax.ListExpr:
		for _, e := range x.Elems {
			c.targets(s, e, kind)
		}
	default:
		c.expr(s, x)
	}
}

// params binds parameter names in fn, in declaration order.
func (c *collector) params(fn *Scope, params []syntax.Param) {
	for _, p := range params {
		if name := syntax.ParamName(p); name != nil {
			c.bind(fn, name, Parameter)
		}
	}
}

// paramExprs visits the defaults and annotations of p, which are
// evaluated in the enclosing scope.
func (c *collector) paramExprs(s *Scope, p syntax.Param) {
	if t := syntax.ParamType(p); t != nil {
		c.expr(s, t)
	}
	if d, ok := p.(*syntax.DefaultParam); ok {
		c.expr(s, d.Default)
	}
}

// expr opens scopes for the lambdas and comprehensions inside x.
func (c *collector) expr(s *Scope, x syntax.Expr) {
	syntax.Inspect(x, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.LambdaExpr:
			for _, p := range n.Params {
				c.paramExprs(s, p)
			}
			fn := NewScope(s, n.Span(), "lambda")
			c.params(fn, n.Params)
			c.expr(fn, n.Body)
			return false

		case *syntax.ListComp:
			comp := c.clauses(s, n.Span(), n.Clauses)
			c.expr(comp, n.Body)
			return false

		case *syntax.DictComp:
			comp := c.clauses(s, n.Span(), n.Clauses)
			c.expr(comp, n.Key)
			c.expr(comp, n.Value)
			return false
		}
		return true
	})
}

// clauses opens the scope of a comprehension. The iterable of the
// first for clause is evaluated in the enclosing scope.
func (c *collector) clauses(s *Scope, span syntax.Span, clauses []syntax.Clause) *Scope {
	comp := NewScope(s, span, "comprehension")
	for i, cl := range clauses {
		switch cl := cl.(type) {
		case *syntax.ForClause:
			if i == 0 {
				c.expr(s, cl.X)
			} else {
				c.expr(comp, cl.X)
			}
			c.targets(comp, cl.Vars, LoopVar)
		case *syntax.IfClause:
			c.expr(comp, cl.Cond)
		}
	}
	return comp
}
