package keycond

import (
	"github.com/harshithgowdakt/keyprune/internal/parser"
	"github.com/harshithgowdakt/keyprune/internal/types"
)

// Constant is a precomputed scalar with its type.
type Constant struct {
	Value    types.Value
	DataType types.DataType
}

// ConstantBlock maps a sub-expression's SQL text (parser.ExprToSQL) to its
// folded constant value. The block is an input to compilation; callers with
// a real constant-folding pass supply theirs, and FoldConstants builds one
// for trees made of literals and registered functions.
type ConstantBlock map[string]Constant

// FoldConstants walks the expression and records every constant-foldable
// sub-expression in a fresh block.
func FoldConstants(expr parser.Expression) ConstantBlock {
	block := make(ConstantBlock)
	var walk func(parser.Expression)
	walk = func(e parser.Expression) {
		if e == nil {
			return
		}
		if c, ok := foldExpr(e); ok {
			block[parser.ExprToSQL(e)] = c
			return
		}
		switch n := e.(type) {
		case *parser.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *parser.UnaryExpr:
			walk(n.Expr)
		case *parser.FunctionCall:
			for _, a := range n.Args {
				walk(a)
			}
		case *parser.TupleExpr:
			for _, el := range n.Elems {
				walk(el)
			}
		}
	}
	walk(expr)
	return block
}

// foldExpr evaluates an expression made entirely of literals, arithmetic and
// registered single-argument functions. Returns false for anything touching
// a column or an unknown function.
func foldExpr(e parser.Expression) (Constant, bool) {
	switch n := e.(type) {
	case *parser.LiteralExpr:
		switch v := n.Value.(type) {
		case int64:
			return Constant{Value: v, DataType: types.TypeInt64}, true
		case float64:
			return Constant{Value: v, DataType: types.TypeFloat64}, true
		case string:
			return Constant{Value: v, DataType: types.TypeString}, true
		case bool:
			b := uint8(0)
			if v {
				b = 1
			}
			return Constant{Value: b, DataType: types.TypeUInt8}, true
		}
		return Constant{}, false

	case *parser.UnaryExpr:
		if n.Op != "-" {
			return Constant{}, false
		}
		inner, ok := foldExpr(n.Expr)
		if !ok {
			return Constant{}, false
		}
		switch inner.DataType {
		case types.TypeFloat32, types.TypeFloat64:
			f, err := types.ToFloat64(inner.DataType, inner.Value)
			if err != nil {
				return Constant{}, false
			}
			return Constant{Value: -f, DataType: types.TypeFloat64}, true
		}
		if inner.DataType.IsInteger() {
			i, err := types.ToInt64(inner.DataType, inner.Value)
			if err != nil {
				return Constant{}, false
			}
			return Constant{Value: -i, DataType: types.TypeInt64}, true
		}
		return Constant{}, false

	case *parser.BinaryExpr:
		switch n.Op {
		case "+", "-", "*", "/":
		default:
			return Constant{}, false
		}
		l, ok := foldExpr(n.Left)
		if !ok {
			return Constant{}, false
		}
		r, ok := foldExpr(n.Right)
		if !ok {
			return Constant{}, false
		}
		return foldArithmetic(n.Op, l, r)

	case *parser.FunctionCall:
		if len(n.Args) != 1 {
			return Constant{}, false
		}
		fn, ok := LookupFunction(n.Name)
		if !ok {
			return Constant{}, false
		}
		arg, ok := foldExpr(n.Args[0])
		if !ok {
			return Constant{}, false
		}
		// Date functions applied to string literals fold through coercion:
		// toYYYYMM('2020-01-15') treats the string as a DateTime.
		if arg.DataType == types.TypeString {
			if v, ok := types.CoerceValue(types.TypeDateTime, arg.Value); ok {
				arg = Constant{Value: v, DataType: types.TypeDateTime}
			}
		}
		resType, ok := fn.ResultType(arg.DataType)
		if !ok {
			return Constant{}, false
		}
		v, err := fn.Apply(arg.DataType, arg.Value)
		if err != nil {
			return Constant{}, false
		}
		return Constant{Value: v, DataType: resType}, true
	}
	return Constant{}, false
}

func foldArithmetic(op string, l, r Constant) (Constant, bool) {
	if !l.DataType.IsNumeric() || !r.DataType.IsNumeric() {
		return Constant{}, false
	}
	if l.DataType.IsInteger() && r.DataType.IsInteger() && op != "/" {
		a, aerr := types.ToInt64(l.DataType, l.Value)
		b, berr := types.ToInt64(r.DataType, r.Value)
		if aerr != nil || berr != nil {
			return Constant{}, false
		}
		var out int64
		switch op {
		case "+":
			out = a + b
		case "-":
			out = a - b
		case "*":
			out = a * b
		}
		return Constant{Value: out, DataType: types.TypeInt64}, true
	}
	a, aerr := types.ToFloat64(l.DataType, l.Value)
	b, berr := types.ToFloat64(r.DataType, r.Value)
	if aerr != nil || berr != nil {
		return Constant{}, false
	}
	var out float64
	switch op {
	case "+":
		out = a + b
	case "-":
		out = a - b
	case "*":
		out = a * b
	case "/":
		if b == 0 {
			return Constant{}, false
		}
		out = a / b
	}
	return Constant{Value: out, DataType: types.TypeFloat64}, true
}

// getConstant resolves a node to a constant: literals directly, otherwise
// through the supplied block, otherwise by local folding.
func getConstant(e parser.Expression, block ConstantBlock) (Constant, bool) {
	if lit, ok := e.(*parser.LiteralExpr); ok {
		return foldExpr(lit)
	}
	if block != nil {
		if c, ok := block[parser.ExprToSQL(e)]; ok {
			return c, true
		}
	}
	return foldExpr(e)
}
