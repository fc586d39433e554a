package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 4 classes of nodes: Expressions, Statements, Parameters and
// call Arguments. All nodes implement the Node interface and carry the
// span of the source text they were built from. Nodes are never mutated
// after the parser returns them.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span // source extent of the node
	Pos() Pos   // offset of the first byte belonging to the node
	End() Pos   // offset immediately after the node
	aNode()     // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// Param is the interface for the parameters of def and lambda.
type Param interface {
	Node
	aParam()
}

// Arg is the interface for the arguments of a call.
type Arg interface {
	Node
	aArg()
}

// Clause is a for or if clause of a comprehension.
type Clause interface {
	Node
	aClause()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	span Span
}

func (n *node) Span() Span { return n.span }
func (n *node) Pos() Pos   { return n.span.Start }
func (n *node) End() Pos   { return n.span.End }
func (n *node) aNode()     {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

type param struct{ node }

func (*param) aParam() {}

type arg struct{ node }

func (*arg) aArg() {}

type clause struct{ node }

func (*clause) aClause() {}

// ----------------------------------------------------------------------------
// Operators

// UnaryOp is a prefix operator.
type UnaryOp uint8

const (
	UPlus  UnaryOp = iota // +x
	UMinus                // -x
	BitNot                // ~x
	LogNot                // not x
)

var unaryOpNames = [...]string{
	UPlus:  "+",
	UMinus: "-",
	BitNot: "~",
	LogNot: "not",
}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// BinOp is an infix operator. The constants are declared from the
// loosest to the tightest binding level.
type BinOp uint8

const (
	OrOp BinOp = iota
	AndOp
	EqOp
	NotEqOp
	LtOp
	GtOp
	LeOp
	GeOp
	InOp
	NotInOp
	BitOrOp
	BitXorOp
	BitAndOp
	ShlOp
	ShrOp
	AddOp
	SubOp
	MulOp
	ModOp
	FloorDivOp
)

var binOpNames = [...]string{
	OrOp:       "or",
	AndOp:      "and",
	EqOp:       "==",
	NotEqOp:    "!=",
	LtOp:       "<",
	GtOp:       ">",
	LeOp:       "<=",
	GeOp:       ">=",
	InOp:       "in",
	NotInOp:    "not in",
	BitOrOp:    "|",
	BitXorOp:   "^",
	BitAndOp:   "&",
	ShlOp:      "<<",
	ShrOp:      ">>",
	AddOp:      "+",
	SubOp:      "-",
	MulOp:      "*",
	ModOp:      "%",
	FloorDivOp: "//",
}

func (op BinOp) String() string { return binOpNames[op] }

// AssignOp is a plain or augmented assignment operator.
type AssignOp uint8

const (
	Assign AssignOp = iota
	AddAssign
	SubAssign
	MulAssign
	FloorDivAssign
	ModAssign
	BitAndAssign
	BitOrAssign
	BitXorAssign
	ShlAssign
	ShrAssign
)

var assignOpNames = [...]string{
	Assign:         "=",
	AddAssign:      "+=",
	SubAssign:      "-=",
	MulAssign:      "*=",
	FloorDivAssign: "//=",
	ModAssign:      "%=",
	BitAndAssign:   "&=",
	BitOrAssign:    "|=",
	BitXorAssign:   "^=",
	ShlAssign:      "<<=",
	ShrAssign:      ">>=",
}

func (op AssignOp) String() string { return assignOpNames[op] }

// ----------------------------------------------------------------------------
// Expressions

// Ident represents an identifier.
type Ident struct {
	expr
	Name string
}

// LitKind represents the kind of a literal.
type LitKind uint8

const (
	IntLit    LitKind = iota // 42
	StringLit                // "text"
)

func (k LitKind) String() string {
	if k == IntLit {
		return "int"
	}
	return "string"
}

// Literal represents an integer or string literal.
type Literal struct {
	expr
	Kind LitKind
	Int  int64  // value of an IntLit
	Str  string // value of a StringLit
}

// TupleExpr represents a tuple: (a, b) or a, b.
type TupleExpr struct {
	expr
	Elems []Expr
}

// ListExpr represents a list literal: [a, b].
type ListExpr struct {
	expr
	Elems []Expr
}

// DictEntry is one key: value pair of a dict literal.
type DictEntry struct {
	node
	Key   Expr
	Value Expr
}

// DictExpr represents a dict literal: {k: v, ...}.
type DictExpr struct {
	expr
	Entries []*DictEntry
}

// ForClause is "for Vars in X" inside a comprehension.
type ForClause struct {
	clause
	Vars Expr
	X    Expr
}

// IfClause is "if Cond" inside a comprehension.
type IfClause struct {
	clause
	Cond Expr
}

// ListComp represents [Body for ... if ...].
// Clauses[0] is always a *ForClause.
type ListComp struct {
	expr
	Body    Expr
	Clauses []Clause
}

// DictComp represents {Key: Value for ... if ...}.
// Clauses[0] is always a *ForClause.
type DictComp struct {
	expr
	Key     Expr
	Value   Expr
	Clauses []Clause
}

// UnaryExpr represents a prefix operation: -X, not X.
type UnaryExpr struct {
	expr
	Op UnaryOp
	X  Expr
}

// BinaryExpr represents an infix operation: X op Y.
type BinaryExpr struct {
	expr
	Op BinOp
	X  Expr
	Y  Expr
}

// CondExpr represents True if Cond else False.
type CondExpr struct {
	expr
	Cond  Expr
	True  Expr
	False Expr
}

// LambdaExpr represents lambda Params: Body.
type LambdaExpr struct {
	expr
	Params []Param
	Body   Expr
}

// DotExpr represents attribute access: X.Name.
type DotExpr struct {
	expr
	X    Expr
	Name *Ident
}

// CallExpr represents a call: Fn(Args...).
type CallExpr struct {
	expr
	Fn   Expr
	Args []Arg
}

// IndexExpr represents X[Index]. A comma-bearing index is a *TupleExpr.
type IndexExpr struct {
	expr
	X     Expr
	Index Expr
}

// SliceExpr represents X[Lo:Hi:Step]; any bound may be nil.
type SliceExpr struct {
	expr
	X    Expr
	Lo   Expr
	Hi   Expr
	Step Expr
}

// ----------------------------------------------------------------------------
// Parameters

// NormalParam is a required parameter: name or name: T.
type NormalParam struct {
	param
	Name *Ident
	Type Expr // nil if unannotated
}

// DefaultParam is an optional parameter: name=default.
type DefaultParam struct {
	param
	Name    *Ident
	Type    Expr
	Default Expr
}

// ArgsParam collects extra positional arguments: *name.
type ArgsParam struct {
	param
	Name *Ident
	Type Expr
}

// KwArgsParam collects extra keyword arguments: **name.
type KwArgsParam struct {
	param
	Name *Ident
	Type Expr
}

// NoArgsParam is the bare * marker; parameters after it are keyword-only.
type NoArgsParam struct {
	param
}

// ParamName returns the declared name of p, or nil for a bare *.
func ParamName(p Param) *Ident {
	switch p := p.(type) {
	case *NormalParam:
		return p.Name
	case *DefaultParam:
		return p.Name
	case *ArgsParam:
		return p.Name
	case *KwArgsParam:
		return p.Name
	}
	return nil
}

// ParamType returns the annotation of p, or nil.
func ParamType(p Param) Expr {
	switch p := p.(type) {
	case *NormalParam:
		return p.Type
	case *DefaultParam:
		return p.Type
	case *ArgsParam:
		return p.Type
	case *KwArgsParam:
		return p.Type
	}
	return nil
}

// ----------------------------------------------------------------------------
// Arguments

// PositionalArg is f(x).
type PositionalArg struct {
	arg
	X Expr
}

// NamedArg is f(name=x).
type NamedArg struct {
	arg
	Name *Ident
	X    Expr
}

// ArgsArg is f(*x).
type ArgsArg struct {
	arg
	X Expr
}

// KwArgsArg is f(**x).
type KwArgsArg struct {
	arg
	X Expr
}

// ----------------------------------------------------------------------------
// Statements

// BlockStmt is an ordered sequence of statements: a whole file or a suite.
type BlockStmt struct {
	stmt
	Stmts []Stmt
}

// ReturnStmt represents return [Result].
type ReturnStmt struct {
	stmt
	Result Expr // nil for bare return
}

// BranchStmt represents break, continue or pass.
type BranchStmt struct {
	stmt
	Tok Token // Break, Continue or Pass
}

// AssignStmt represents LHS op RHS.
type AssignStmt struct {
	stmt
	LHS Expr
	Op  AssignOp
	RHS Expr
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	stmt
	X Expr
}

// Visibility classifies the names bound by a statement.
type Visibility uint8

const (
	Private Visibility = iota // visible only inside the defining module
	Public                    // exported to modules that load this one
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// LoadBinding binds Local to the symbol Name exported by the loaded module.
type LoadBinding struct {
	node
	Local *Ident
	Name  *Literal
}

// LoadStmt represents load("module", "sym", local="sym2").
type LoadStmt struct {
	stmt
	Module     *Literal
	Bindings   []*LoadBinding
	Visibility Visibility
}

// IfStmt represents if Cond: Body [else: Else].
// Else is nil, a *BlockStmt, or an *IfStmt for elif.
type IfStmt struct {
	stmt
	Cond Expr
	Body *BlockStmt
	Else Stmt
}

// ForStmt represents for Vars in X: Body.
type ForStmt struct {
	stmt
	Vars Expr
	X    Expr
	Body *BlockStmt
}

// DefStmt represents def Name(Params) -> Result: Body.
type DefStmt struct {
	stmt
	Name   *Ident
	Params []Param
	Result Expr // nil if unannotated
	Body   *BlockStmt
}
