// Package scope computes the lexical scopes of a parsed starling file:
// the names each module, function, lambda and comprehension binds.
package scope

import (
	"fmt"
	"slices"
	"strings"

	"github.com/you-not-fish/starling/internal/syntax"
)

// Kind describes how a name was bound.
type Kind uint8

const (
	Assigned  Kind = iota // x = ..., x += ...
	LoopVar               // for x in ...
	Function              // def x(...)
	Parameter             // def f(x) or lambda x: ...
	Loaded                // load("m", "x")
)

var kindNames = [...]string{
	Assigned:  "assigned",
	LoopVar:   "loop variable",
	Function:  "function",
	Parameter: "parameter",
	Loaded:    "loaded",
}

func (k Kind) String() string { return kindNames[k] }

// Binding records the first place a scope binds a name.
type Binding struct {
	Name       string
	Kind       Kind
	Visibility syntax.Visibility
	Span       syntax.Span // the binding identifier
}

// Scope represents a lexical scope.
// Scopes form a tree rooted at the module scope.
type Scope struct {
	parent   *Scope
	children []*Scope
	elems    map[string]*Binding
	order    []string // names in binding order
	span     syntax.Span
	comment  string // e.g. "module", "function f", "lambda"
}

// NewScope creates a new scope with the given parent.
func NewScope(parent *Scope, span syntax.Span, comment string) *Scope {
	s := &Scope{
		parent:  parent,
		elems:   make(map[string]*Binding),
		span:    span,
		comment: comment,
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// Parent returns the parent scope, or nil for the module scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Children returns the nested scopes in source order.
func (s *Scope) Children() []*Scope {
	return s.children
}

// Span returns the source extent of the scope.
func (s *Scope) Span() syntax.Span {
	return s.span
}

// Comment returns the scope's description.
func (s *Scope) Comment() string {
	return s.comment
}

// Lookup returns the binding for name in this scope only, or nil.
func (s *Scope) Lookup(name string) *Binding {
	return s.elems[name]
}

// LookupParent searches this scope and then its ancestors for name.
// It returns the binding and the scope that holds it, or (nil, nil).
func (s *Scope) LookupParent(name string) (*Binding, *Scope) {
	for scope := s; scope != nil; scope = scope.parent {
		if b := scope.elems[name]; b != nil {
			return b, scope
		}
	}
	return nil, nil
}

// Insert adds b to the scope. If the name is already bound, the
// existing binding is returned and b is discarded. Otherwise, Insert
// returns nil.
func (s *Scope) Insert(b *Binding) *Binding {
	if existing := s.elems[b.Name]; existing != nil {
		return existing
	}
	s.elems[b.Name] = b
	s.order = append(s.order, b.Name)
	return nil
}

// Names returns the names bound in the scope, sorted alphabetically.
func (s *Scope) Names() []string {
	names := slices.Clone(s.order)
	slices.Sort(names)
	return names
}

// Bindings returns the bindings of the scope in the order they were made.
func (s *Scope) Bindings() []*Binding {
	bs := make([]*Binding, len(s.order))
	for i, name := range s.order {
		bs[i] = s.elems[name]
	}
	return bs
}

// Len returns the number of names bound in the scope.
func (s *Scope) Len() int {
	return len(s.elems)
}

// String returns a string representation of the scope tree for debugging.
func (s *Scope) String() string {
	var buf strings.Builder
	s.writeTo(&buf, 0)
	return buf.String()
}

func (s *Scope) writeTo(buf *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(buf, "%sscope %s {\n", prefix, s.comment)
	for _, name := range s.Names() {
		b := s.elems[name]
		fmt.Fprintf(buf, "%s  %s: %s %s\n", prefix, name, b.Kind, b.Visibility)
	}
	for _, child := range s.children {
		child.writeTo(buf, indent+1)
	}
	fmt.Fprintf(buf, "%s}\n", prefix)
}
