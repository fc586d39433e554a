package syntax

import "fmt"

// argument stages, in the order a call may present them
const (
	stagePositional = iota
	stageNamed
	stageArgs
	stageKwArgs
)

var stageNames = [...]string{
	stagePositional: "positional argument",
	stageNamed:      "keyword argument",
	stageArgs:       "*args",
	stageKwArgs:     "**kwargs",
}

// checkArgs verifies that call arguments appear in the order
// positional, named, *args, **kwargs, that each spread form occurs at
// most once, and that no keyword is repeated.
func (p *parser) checkArgs(args []Arg) {
	stage := stagePositional
	var seen map[string]bool

	for _, a := range args {
		var cur int
		switch a := a.(type) {
		case *PositionalArg:
			cur = stagePositional
		case *NamedArg:
			cur = stageNamed
			if seen[a.Name.Name] {
				p.fail(SemanticError, a.Span(), fmt.Sprintf("keyword argument %s repeated", a.Name.Name))
			}
			if seen == nil {
				seen = make(map[string]bool)
			}
			seen[a.Name.Name] = true
		case *ArgsArg:
			cur = stageArgs
		case *KwArgsArg:
			cur = stageKwArgs
		}

		switch {
		case cur < stage:
			p.fail(SemanticError, a.Span(), fmt.Sprintf("%s follows %s", stageNames[cur], stageNames[stage]))
		case cur == stage && cur >= stageArgs:
			p.fail(SemanticError, a.Span(), fmt.Sprintf("multiple %s arguments", stageNames[cur]))
		}
		stage = cur
	}
}

// checkParams verifies the shape of a def or lambda parameter list:
//
//	required and optional parameters, then * or *args, then more
//	named parameters, then **kwargs
//
// A required parameter may not follow an optional one before the *
// marker, a bare * must be followed by a named parameter, and names
// are unique.
func (p *parser) checkParams(params []Param) {
	seen := make(map[string]bool)
	var (
		optional bool         // an optional parameter precedes
		star     bool         // * or *args seen
		kwargs   bool         // **kwargs seen
		bareStar *NoArgsParam // bare * not yet followed by a named parameter
	)

	for _, q := range params {
		if kwargs {
			p.fail(SemanticError, q.Span(), "parameter follows **kwargs")
		}
		if name := ParamName(q); name != nil {
			if seen[name.Name] {
				p.fail(SemanticError, q.Span(), fmt.Sprintf("duplicate parameter %s", name.Name))
			}
			seen[name.Name] = true
		}

		switch q := q.(type) {
		case *NormalParam:
			if optional && !star {
				p.fail(SemanticError, q.Span(), fmt.Sprintf("required parameter %s follows optional parameter", q.Name.Name))
			}
			bareStar = nil
		case *DefaultParam:
			optional = true
			bareStar = nil
		case *ArgsParam:
			if star {
				p.fail(SemanticError, q.Span(), "multiple * parameters")
			}
			star = true
		case *NoArgsParam:
			if star {
				p.fail(SemanticError, q.Span(), "multiple * parameters")
			}
			star = true
			bareStar = q
		case *KwArgsParam:
			if bareStar != nil {
				p.fail(SemanticError, bareStar.Span(), "bare * must be followed by a named parameter")
			}
			kwargs = true
		}
	}
	if bareStar != nil {
		p.fail(SemanticError, bareStar.Span(), "bare * must be followed by a named parameter")
	}
}
