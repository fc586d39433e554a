package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

// jsonObject starts the object for a node with its type and span.
func jsonObject(kind string, s Span) map[string]interface{} {
	return map[string]interface{}{
		"type":  kind,
		"start": s.Start,
		"end":   s.End,
	}
}

func jsonSlice[T Node](nodes []T) []interface{} {
	out := make([]interface{}, len(nodes))
	for i, n := range nodes {
		out[i] = toJSON(n)
	}
	return out
}

// setOpt stores an optional child under key when it is present.
func setOpt(m map[string]interface{}, key string, node Node) {
	if !isNil(node) {
		m[key] = toJSON(node)
	}
}

func toJSON(node Node) interface{} {
	if isNil(node) {
		return nil
	}

	switch n := node.(type) {
	case *BlockStmt:
		m := jsonObject("BlockStmt", n.span)
		m["stmts"] = jsonSlice(n.Stmts)
		return m

	case *ReturnStmt:
		m := jsonObject("ReturnStmt", n.span)
		setOpt(m, "result", n.Result)
		return m

	case *BranchStmt:
		m := jsonObject("BranchStmt", n.span)
		m["token"] = n.Tok.String()
		return m

	case *AssignStmt:
		m := jsonObject("AssignStmt", n.span)
		m["op"] = n.Op.String()
		m["lhs"] = toJSON(n.LHS)
		m["rhs"] = toJSON(n.RHS)
		return m

	case *ExprStmt:
		m := jsonObject("ExprStmt", n.span)
		m["x"] = toJSON(n.X)
		return m

	case *LoadStmt:
		m := jsonObject("LoadStmt", n.span)
		m["module"] = n.Module.Str
		m["visibility"] = n.Visibility.String()
		m["bindings"] = jsonSlice(n.Bindings)
		return m

	case *LoadBinding:
		m := jsonObject("LoadBinding", n.span)
		m["local"] = n.Local.Name
		m["name"] = n.Name.Str
		return m

	case *IfStmt:
		m := jsonObject("IfStmt", n.span)
		m["cond"] = toJSON(n.Cond)
		m["body"] = toJSON(n.Body)
		setOpt(m, "else", n.Else)
		return m

	case *ForStmt:
		m := jsonObject("ForStmt", n.span)
		m["vars"] = toJSON(n.Vars)
		m["x"] = toJSON(n.X)
		m["body"] = toJSON(n.Body)
		return m

	case *DefStmt:
		m := jsonObject("DefStmt", n.span)
		m["name"] = n.Name.Name
		m["params"] = jsonSlice(n.Params)
		setOpt(m, "result", n.Result)
		m["body"] = toJSON(n.Body)
		return m

	case *NormalParam:
		m := jsonObject("NormalParam", n.span)
		m["name"] = n.Name.Name
		setOpt(m, "paramtype", n.Type)
		return m

	case *DefaultParam:
		m := jsonObject("DefaultParam", n.span)
		m["name"] = n.Name.Name
		setOpt(m, "paramtype", n.Type)
		m["default"] = toJSON(n.Default)
		return m

	case *ArgsParam:
		m := jsonObject("ArgsParam", n.span)
		m["name"] = n.Name.Name
		setOpt(m, "paramtype", n.Type)
		return m

	case *KwArgsParam:
		m := jsonObject("KwArgsParam", n.span)
		m["name"] = n.Name.Name
		setOpt(m, "paramtype", n.Type)
		return m

	case *NoArgsParam:
		return jsonObject("NoArgsParam", n.span)

	case *PositionalArg:
		m := jsonObject("PositionalArg", n.span)
		m["x"] = toJSON(n.X)
		return m

	case *NamedArg:
		m := jsonObject("NamedArg", n.span)
		m["name"] = n.Name.Name
		m["x"] = toJSON(n.X)
		return m

	case *ArgsArg:
		m := jsonObject("ArgsArg", n.span)
		m["x"] = toJSON(n.X)
		return m

	case *KwArgsArg:
		m := jsonObject("KwArgsArg", n.span)
		m["x"] = toJSON(n.X)
		return m

	case *Ident:
		m := jsonObject("Ident", n.span)
		m["name"] = n.Name
		return m

	case *Literal:
		m := jsonObject("Literal", n.span)
		m["kind"] = n.Kind.String()
		if n.Kind == IntLit {
			m["value"] = n.Int
		} else {
			m["value"] = n.Str
		}
		return m

	case *TupleExpr:
		m := jsonObject("TupleExpr", n.span)
		m["elems"] = jsonSlice(n.Elems)
		return m

	case *ListExpr:
		m := jsonObject("ListExpr", n.span)
		m["elems"] = jsonSlice(n.Elems)
		return m

	case *DictExpr:
		m := jsonObject("DictExpr", n.span)
		m["entries"] = jsonSlice(n.Entries)
		return m

	case *DictEntry:
		m := jsonObject("DictEntry", n.span)
		m["key"] = toJSON(n.Key)
		m["value"] = toJSON(n.Value)
		return m

	case *ListComp:
		m := jsonObject("ListComp", n.span)
		m["body"] = toJSON(n.Body)
		m["clauses"] = jsonSlice(n.Clauses)
		return m

	case *DictComp:
		m := jsonObject("DictComp", n.span)
		m["key"] = toJSON(n.Key)
		m["value"] = toJSON(n.Value)
		m["clauses"] = jsonSlice(n.Clauses)
		return m

	case *ForClause:
		m := jsonObject("ForClause", n.span)
		m["vars"] = toJSON(n.Vars)
		m["x"] = toJSON(n.X)
		return m

	case *IfClause:
		m := jsonObject("IfClause", n.span)
		m["cond"] = toJSON(n.Cond)
		return m

	case *UnaryExpr:
		m := jsonObject("UnaryExpr", n.span)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		return m

	case *BinaryExpr:
		m := jsonObject("BinaryExpr", n.span)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		m["y"] = toJSON(n.Y)
		return m

	case *CondExpr:
		m := jsonObject("CondExpr", n.span)
		m["cond"] = toJSON(n.Cond)
		m["true"] = toJSON(n.True)
		m["false"] = toJSON(n.False)
		return m

	case *LambdaExpr:
		m := jsonObject("LambdaExpr", n.span)
		m["params"] = jsonSlice(n.Params)
		m["body"] = toJSON(n.Body)
		return m

	case *DotExpr:
		m := jsonObject("DotExpr", n.span)
		m["x"] = toJSON(n.X)
		m["name"] = n.Name.Name
		return m

	case *CallExpr:
		m := jsonObject("CallExpr", n.span)
		m["fn"] = toJSON(n.Fn)
		m["args"] = jsonSlice(n.Args)
		return m

	case *IndexExpr:
		m := jsonObject("IndexExpr", n.span)
		m["x"] = toJSON(n.X)
		m["index"] = toJSON(n.Index)
		return m

	case *SliceExpr:
		m := jsonObject("SliceExpr", n.span)
		m["x"] = toJSON(n.X)
		setOpt(m, "lo", n.Lo)
		setOpt(m, "hi", n.Hi)
		setOpt(m, "step", n.Step)
		return m
	}

	return map[string]interface{}{"type": "Unknown"}
}
