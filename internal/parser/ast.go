package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a node in an expression tree.
type Expression interface {
	exprNode()
}

// ColumnRef references a column by name.
type ColumnRef struct {
	Name string
}

func (*ColumnRef) exprNode() {}

// LiteralExpr is a literal value (int64, float64, string, or bool).
type LiteralExpr struct {
	Value interface{}
}

func (*LiteralExpr) exprNode() {}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op    string // +, -, *, /, =, !=, <, >, <=, >=, IN, NOT IN, AND, OR
	Left  Expression
	Right Expression
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	Op   string // NOT, -
	Expr Expression
}

func (*UnaryExpr) exprNode() {}

// FunctionCall represents a function invocation.
type FunctionCall struct {
	Name string
	Args []Expression
}

func (*FunctionCall) exprNode() {}

// TupleExpr is a parenthesized, comma-separated list of expressions, used as
// the element list of IN and as multi-column IN left sides.
type TupleExpr struct {
	Elems []Expression
}

func (*TupleExpr) exprNode() {}

// ExprToSQL converts an Expression AST back to its SQL text representation.
// The output is deterministic, which makes it usable as a sub-expression
// identity key (constant blocks, prepared sets).
func ExprToSQL(expr Expression) string {
	if expr == nil {
		return ""
	}
	switch e := expr.(type) {
	case *ColumnRef:
		return e.Name
	case *LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			return "'" + strings.ReplaceAll(v, "'", "''") + "'"
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			if v {
				return "TRUE"
			}
			return "FALSE"
		default:
			return fmt.Sprintf("%v", v)
		}
	case *FunctionCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprToSQL(a)
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case *BinaryExpr:
		return ExprToSQL(e.Left) + " " + e.Op + " " + ExprToSQL(e.Right)
	case *UnaryExpr:
		return e.Op + " " + ExprToSQL(e.Expr)
	case *TupleExpr:
		elems := make([]string, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = ExprToSQL(el)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		return "?"
	}
}

// ExtractColumnRefs returns the distinct column names referenced anywhere in
// the expression, in first-appearance order.
func ExtractColumnRefs(expr Expression) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case *ColumnRef:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *UnaryExpr:
			walk(n.Expr)
		case *FunctionCall:
			for _, a := range n.Args {
				walk(a)
			}
		case *TupleExpr:
			for _, el := range n.Elems {
				walk(el)
			}
		}
	}
	walk(expr)
	return names
}
