package keycond

import (
	"fmt"
	"strings"

	"github.com/harshithgowdakt/keyprune/internal/parser"
	"github.com/harshithgowdakt/keyprune/internal/types"
)

// RPN element types for KeyCondition evaluation.
type rpnFunction uint8

const (
	rpnFunctionInRange    rpnFunction = iota // condition: key column value is in range
	rpnFunctionNotInRange                    // condition: key column value is NOT in range
	rpnFunctionInSet                         // condition: key tuple is in a prepared set
	rpnFunctionNotInSet                      // condition: key tuple is NOT in a prepared set
	rpnFunctionUnknown                       // unknown condition — evaluates to MaskMaybe
	rpnFunctionNot                           // logical NOT of top stack item
	rpnFunctionAnd                           // logical AND of top `arity` stack items
	rpnFunctionOr                            // logical OR of top `arity` stack items
	rpnAlwaysTrue                            // constant true
	rpnAlwaysFalse                           // constant false
)

// rpnElement is a single element in the RPN (Reverse Polish Notation)
// program. All payloads, including the monotonic chain, are filled during
// compilation and never mutated afterward, so a compiled program is safe for
// unlimited concurrent reads.
type rpnElement struct {
	function   rpnFunction
	keyColumn  int            // for InRange/NotInRange
	rangeValue Range          // for InRange/NotInRange; DataType is the chain's image type
	chain      MonotonicChain // optional, for InRange/NotInRange
	setIndex   *setIndex      // for InSet/NotInSet
	arity      int            // for And/Or: how many stack values to fold
}

// KeyCondition compiles a WHERE expression into an RPN program that can be
// evaluated against key ranges and parallelograms, matching ClickHouse's
// KeyCondition class used for both partition and primary-key pruning.
//
// The program is built once per query plan and is immutable afterward except
// for AddCondition, which must happen before any concurrent evaluation
// begins. Every recognition failure degrades to an UNKNOWN element, so the
// evaluation result is a sound over-approximation: the condition may be
// reported feasible where it is not, never the reverse.
type KeyCondition struct {
	rpn        []rpnElement
	keyColumns map[string]int // column name -> position in the sort key
	keyNames   []string
	keyTypes   []types.DataType
}

// NewKeyCondition compiles a WHERE expression against the given sort key.
// keyColumns are the key column names in sort-key order, keyTypes their
// types. constants is the block of precomputed scalar constants keyed by
// sub-expression text (may be nil; literal-only sub-trees are folded
// locally). sets maps IN right-hand sides to prepared sets (may be nil;
// literal tuples are materialized inline).
//
// A nil where compiles to a single UNKNOWN element, i.e. "may be true"
// everywhere.
func NewKeyCondition(where parser.Expression, keyColumns []string, keyTypes []types.DataType, constants ConstantBlock, sets PreparedSets) *KeyCondition {
	if len(keyColumns) != len(keyTypes) {
		panic(fmt.Sprintf("keycond: %d key columns but %d key types", len(keyColumns), len(keyTypes)))
	}

	kc := &KeyCondition{
		keyColumns: make(map[string]int, len(keyColumns)),
		keyNames:   keyColumns,
		keyTypes:   keyTypes,
	}
	for i, name := range keyColumns {
		kc.keyColumns[name] = i
	}
	kc.traverse(where, constants, sets)
	return kc
}

// --- Compilation ---

// atomMap maps a comparison operator to a pure constructor filling an RPN
// element from the resolved (key column, constant) pair. The table is fixed
// at process start and never mutated.
var atomMap = map[string]func(out *rpnElement, value types.Value, dt types.DataType){
	"=": func(out *rpnElement, value types.Value, dt types.DataType) {
		out.function = rpnFunctionInRange
		out.rangeValue = PointRange(value, dt)
	},
	"!=": func(out *rpnElement, value types.Value, dt types.DataType) {
		out.function = rpnFunctionNotInRange
		out.rangeValue = PointRange(value, dt)
	},
	">": func(out *rpnElement, value types.Value, dt types.DataType) {
		out.function = rpnFunctionInRange
		out.rangeValue = LeftBoundedRange(value, false, dt)
	},
	">=": func(out *rpnElement, value types.Value, dt types.DataType) {
		out.function = rpnFunctionInRange
		out.rangeValue = LeftBoundedRange(value, true, dt)
	},
	"<": func(out *rpnElement, value types.Value, dt types.DataType) {
		out.function = rpnFunctionInRange
		out.rangeValue = RightBoundedRange(value, false, dt)
	},
	"<=": func(out *rpnElement, value types.Value, dt types.DataType) {
		out.function = rpnFunctionInRange
		out.rangeValue = RightBoundedRange(value, true, dt)
	},
}

// flipOperator inverts comparison operators when the constant is on the left.
func flipOperator(op string) string {
	switch op {
	case "<":
		return ">"
	case ">":
		return "<"
	case "<=":
		return ">="
	case ">=":
		return "<="
	default:
		return op
	}
}

// traverse recursively walks the AST in post-order, building the RPN program.
func (kc *KeyCondition) traverse(e parser.Expression, constants ConstantBlock, sets PreparedSets) {
	if e == nil {
		kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionUnknown})
		return
	}

	// A constant sub-expression lowers to its boolean value.
	if c, ok := getConstant(e, constants); ok {
		if truth, ok := constantTruth(c); ok {
			fn := rpnAlwaysFalse
			if truth {
				fn = rpnAlwaysTrue
			}
			kc.rpn = append(kc.rpn, rpnElement{function: fn})
		} else {
			kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionUnknown})
		}
		return
	}

	switch n := e.(type) {
	case *parser.BinaryExpr:
		switch strings.ToUpper(n.Op) {
		case "AND":
			kc.traverse(n.Left, constants, sets)
			kc.traverse(n.Right, constants, sets)
			kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionAnd, arity: 2})
			return
		case "OR":
			kc.traverse(n.Left, constants, sets)
			kc.traverse(n.Right, constants, sets)
			kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionOr, arity: 2})
			return
		}
		if el, ok := kc.atomFromNode(n, constants, sets); ok {
			kc.rpn = append(kc.rpn, el)
		} else {
			kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionUnknown})
		}

	case *parser.UnaryExpr:
		if strings.ToUpper(n.Op) == "NOT" {
			kc.traverse(n.Expr, constants, sets)
			kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionNot})
			return
		}
		kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionUnknown})

	case *parser.FunctionCall:
		// Variadic and(...)/or(...)/not(...) forms.
		switch n.Name {
		case "and", "or":
			if len(n.Args) == 1 {
				kc.traverse(n.Args[0], constants, sets)
				return
			}
			if len(n.Args) >= 2 {
				for _, arg := range n.Args {
					kc.traverse(arg, constants, sets)
				}
				fn := rpnFunctionAnd
				if n.Name == "or" {
					fn = rpnFunctionOr
				}
				kc.rpn = append(kc.rpn, rpnElement{function: fn, arity: len(n.Args)})
				return
			}
		case "not":
			if len(n.Args) == 1 {
				kc.traverse(n.Args[0], constants, sets)
				kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionNot})
				return
			}
		}
		kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionUnknown})

	default:
		kc.rpn = append(kc.rpn, rpnElement{function: rpnFunctionUnknown})
	}
}

// constantTruth maps a numeric constant to a boolean; strings have no truth
// value here.
func constantTruth(c Constant) (bool, bool) {
	if !c.DataType.IsNumeric() {
		return false, false
	}
	f, err := types.ToFloat64(c.DataType, c.Value)
	if err != nil {
		return false, false
	}
	return f != 0, true
}

// atomFromNode recognizes a comparison or membership expression and compiles
// it into a single RPN atom. Returns false when the shape is not recognized;
// the caller then emits UNKNOWN.
func (kc *KeyCondition) atomFromNode(e *parser.BinaryExpr, constants ConstantBlock, sets PreparedSets) (rpnElement, bool) {
	op := e.Op
	if op == "<>" {
		op = "!="
	}

	switch strings.ToUpper(op) {
	case "IN", "NOT IN":
		return kc.setAtom(e.Left, e.Right, strings.ToUpper(op) == "NOT IN", sets, constants)
	}

	ctor, ok := atomMap[op]
	if !ok {
		return rpnElement{}, false
	}

	// key OP const, or const OP key with a flipped comparator.
	if keyIdx, chain, imageType, ok := kc.resolveKeyChain(e.Left); ok {
		if c, ok := getConstant(e.Right, constants); ok {
			return buildRangeAtom(ctor, keyIdx, chain, imageType, c)
		}
		return rpnElement{}, false
	}
	if keyIdx, chain, imageType, ok := kc.resolveKeyChain(e.Right); ok {
		if c, ok := getConstant(e.Left, constants); ok {
			flipped, okFlip := atomMap[flipOperator(op)]
			if !okFlip {
				return rpnElement{}, false
			}
			return buildRangeAtom(flipped, keyIdx, chain, imageType, c)
		}
	}
	return rpnElement{}, false
}

func buildRangeAtom(ctor func(*rpnElement, types.Value, types.DataType), keyIdx int, chain MonotonicChain, imageType types.DataType, c Constant) (rpnElement, bool) {
	value, ok := types.CoerceValue(imageType, c.Value)
	if !ok {
		return rpnElement{}, false
	}
	el := rpnElement{keyColumn: keyIdx, chain: chain}
	ctor(&el, value, imageType)
	return el, true
}

// resolveKeyChain decides whether node denotes a key column, possibly
// wrapped in a chain of functions each of which carries monotonicity
// information. It peels one application per step and terminates successfully
// only at a bare key-column leaf; anything else fails the whole resolution.
// The returned chain is ordered innermost first; imageType is the type the
// full chain produces from the key column's type.
func (kc *KeyCondition) resolveKeyChain(node parser.Expression) (keyIdx int, chain MonotonicChain, imageType types.DataType, ok bool) {
	switch n := node.(type) {
	case *parser.ColumnRef:
		idx, found := kc.keyColumns[n.Name]
		if !found {
			return 0, nil, 0, false
		}
		return idx, nil, kc.keyTypes[idx], true

	case *parser.FunctionCall:
		if len(n.Args) != 1 {
			return 0, nil, 0, false
		}
		fn, found := LookupFunction(n.Name)
		if !found || !fn.hasMonotonicityInfo {
			return 0, nil, 0, false
		}
		idx, innerChain, innerType, innerOK := kc.resolveKeyChain(n.Args[0])
		if !innerOK {
			return 0, nil, 0, false
		}
		resType, accepts := fn.ResultType(innerType)
		if !accepts {
			return 0, nil, 0, false
		}
		return idx, append(innerChain, fn), resType, true

	case *parser.UnaryExpr:
		if n.Op == "-" {
			fn, found := LookupFunction("negate")
			if !found {
				return 0, nil, 0, false
			}
			idx, innerChain, innerType, innerOK := kc.resolveKeyChain(n.Expr)
			if !innerOK {
				return 0, nil, 0, false
			}
			resType, accepts := fn.ResultType(innerType)
			if !accepts {
				return 0, nil, 0, false
			}
			return idx, append(innerChain, fn), resType, true
		}
	}
	return 0, nil, 0, false
}

// setAtom compiles `left IN right` / `left NOT IN right` when the left side
// resolves to a tuple of (possibly wrapped) key columns and the right side is
// a prepared set or a literal tuple.
func (kc *KeyCondition) setAtom(left, right parser.Expression, negated bool, sets PreparedSets, constants ConstantBlock) (rpnElement, bool) {
	var elems []parser.Expression
	if tuple, isTuple := left.(*parser.TupleExpr); isTuple {
		elems = tuple.Elems
	} else {
		elems = []parser.Expression{left}
	}

	keyCols := make([]int, len(elems))
	chains := make([]MonotonicChain, len(elems))
	valueTypes := make([]types.DataType, len(elems))
	for i, el := range elems {
		idx, chain, imageType, ok := kc.resolveKeyChain(el)
		if !ok {
			return rpnElement{}, false
		}
		keyCols[i] = idx
		chains[i] = chain
		valueTypes[i] = imageType
	}

	set := sets[parser.ExprToSQL(right)]
	if set == nil {
		var ok bool
		set, ok = literalSet(right, len(elems), constants)
		if !ok {
			return rpnElement{}, false
		}
	}

	si, err := newSetIndex(keyCols, chains, valueTypes, set)
	if err != nil {
		return rpnElement{}, false
	}

	fn := rpnFunctionInSet
	if negated {
		fn = rpnFunctionNotInSet
	}
	return rpnElement{function: fn, setIndex: si}, true
}

// literalSet materializes an IN list given directly as constants in the
// query text.
func literalSet(right parser.Expression, width int, constants ConstantBlock) (*PreparedSet, bool) {
	var items []parser.Expression
	if tuple, isTuple := right.(*parser.TupleExpr); isTuple {
		items = tuple.Elems
	} else {
		items = []parser.Expression{right}
	}

	set := &PreparedSet{Tuples: make([][]types.Value, 0, len(items))}
	for _, item := range items {
		var elems []parser.Expression
		if width == 1 {
			elems = []parser.Expression{item}
		} else {
			tuple, isTuple := item.(*parser.TupleExpr)
			if !isTuple || len(tuple.Elems) != width {
				return nil, false
			}
			elems = tuple.Elems
		}
		row := make([]types.Value, width)
		for i, el := range elems {
			c, ok := getConstant(el, constants)
			if !ok {
				return nil, false
			}
			row[i] = c.Value
		}
		set.Tuples = append(set.Tuples, row)
	}
	return set, true
}

// --- Evaluation ---

// checkInParallelogram interprets the RPN program over the probe box. The
// probe ranges must hold values of the key columns' declared types.
func (kc *KeyCondition) checkInParallelogram(pg Parallelogram) BoolMask {
	stack := make([]BoolMask, 0, len(kc.rpn))

	for i := range kc.rpn {
		el := &kc.rpn[i]
		switch el.function {
		case rpnFunctionInRange, rpnFunctionNotInRange:
			probe := WholeUniverseRange(kc.keyTypes[el.keyColumn])
			if el.keyColumn < len(pg) {
				probe = pg[el.keyColumn]
			}
			// A chain that is not monotonic over this concrete probe range
			// degrades the atom to Maybe for this evaluation only.
			mask := MaskMaybe
			if transformed, ok := el.chain.ApplyToRange(probe); ok {
				mask = checkRangeIntersection(el.rangeValue, transformed)
				if el.function == rpnFunctionNotInRange {
					mask = mask.Not()
				}
			}
			stack = append(stack, mask)

		case rpnFunctionInSet, rpnFunctionNotInSet:
			mask := el.setIndex.checkInParallelogram(pg, kc.keyTypes)
			if el.function == rpnFunctionNotInSet {
				mask = mask.Not()
			}
			stack = append(stack, mask)

		case rpnFunctionUnknown:
			stack = append(stack, MaskMaybe)

		case rpnAlwaysTrue:
			stack = append(stack, MaskAlwaysTrue)

		case rpnAlwaysFalse:
			stack = append(stack, MaskAlwaysFalse)

		case rpnFunctionNot:
			if len(stack) < 1 {
				panic("keycond: corrupted RPN program: NOT over empty stack")
			}
			stack[len(stack)-1] = stack[len(stack)-1].Not()

		case rpnFunctionAnd, rpnFunctionOr:
			n := el.arity
			if n < 2 || len(stack) < n {
				panic(fmt.Sprintf("keycond: corrupted RPN program: fold of %d over %d values", n, len(stack)))
			}
			res := stack[len(stack)-n]
			for _, m := range stack[len(stack)-n+1:] {
				if el.function == rpnFunctionAnd {
					res = res.And(m)
				} else {
					res = res.Or(m)
				}
			}
			stack = stack[:len(stack)-n]
			stack = append(stack, res)
		}
	}

	if len(stack) != 1 {
		panic(fmt.Sprintf("keycond: corrupted RPN program: %d values left on stack", len(stack)))
	}
	return stack[0]
}

func (kc *KeyCondition) buildProbe(usedKeySize int, leftKey, rightKey []types.Value, dataTypes []types.DataType, rightBounded bool) Parallelogram {
	if usedKeySize < 0 || usedKeySize > len(kc.keyTypes) {
		panic(fmt.Sprintf("keycond: usedKeySize %d out of range for %d key columns", usedKeySize, len(kc.keyTypes)))
	}
	if len(leftKey) < usedKeySize || len(dataTypes) < usedKeySize {
		panic(fmt.Sprintf("keycond: %d key values / %d types for usedKeySize %d", len(leftKey), len(dataTypes), usedKeySize))
	}
	if rightBounded && len(rightKey) < usedKeySize {
		panic(fmt.Sprintf("keycond: %d right key values for usedKeySize %d", len(rightKey), usedKeySize))
	}

	n := usedKeySize
	if m := kc.MaxKeyColumn() + 1; m > n {
		n = m
	}
	pg := make(Parallelogram, n)
	for i := 0; i < n; i++ {
		dt := kc.keyTypes[i]
		if i < len(dataTypes) {
			dt = dataTypes[i]
		}
		switch {
		case i >= usedKeySize:
			pg[i] = WholeUniverseRange(dt)
		case rightBounded:
			pg[i] = Range{
				Left: leftKey[i], Right: rightKey[i],
				LeftIncluded: true, RightIncluded: true,
				DataType: dt,
			}
		default:
			pg[i] = Range{Left: leftKey[i], LeftIncluded: true, DataType: dt}
		}
	}
	return pg
}

// MayBeTrueInRange reports whether the condition is feasible in the key
// range [leftKey, rightKey]. Both keys must contain at least usedKeySize
// values in sort-key order; key columns beyond usedKeySize are unbounded.
func (kc *KeyCondition) MayBeTrueInRange(usedKeySize int, leftKey, rightKey []types.Value, dataTypes []types.DataType) bool {
	pg := kc.buildProbe(usedKeySize, leftKey, rightKey, dataTypes, true)
	return kc.checkInParallelogram(pg).CanBeTrue
}

// MayBeTrueAfter reports whether the condition is feasible in the
// semi-infinite range [leftKey, +inf) — the tail after the last boundary of
// an index.
func (kc *KeyCondition) MayBeTrueAfter(usedKeySize int, leftKey []types.Value, dataTypes []types.DataType) bool {
	pg := kc.buildProbe(usedKeySize, leftKey, nil, dataTypes, false)
	return kc.checkInParallelogram(pg).CanBeTrue
}

// MayBeTrueInParallelogram reports whether the condition is feasible in the
// direct product of the given single-column ranges. Used for per-granule and
// minmax pruning where bounds are not a contiguous key prefix.
func (kc *KeyCondition) MayBeTrueInParallelogram(pg Parallelogram) bool {
	return kc.checkInParallelogram(pg).CanBeTrue
}

// CheckInParallelogram exposes the full three-state result for callers that
// also need "can be false" (e.g. final-mark tracking).
func (kc *KeyCondition) CheckInParallelogram(pg Parallelogram) BoolMask {
	return kc.checkInParallelogram(pg)
}

// AlwaysUnknownOrTrue reports that the index cannot be used: no reachable
// range or set atom constrains a key column, so every evaluation returns
// "may be true". An ALWAYS_FALSE constant counts as usable (it prunes
// everything).
func (kc *KeyCondition) AlwaysUnknownOrTrue() bool {
	stack := make([]bool, 0, len(kc.rpn))
	for i := range kc.rpn {
		el := &kc.rpn[i]
		switch el.function {
		case rpnFunctionUnknown, rpnAlwaysTrue:
			stack = append(stack, true)
		case rpnFunctionInRange, rpnFunctionNotInRange,
			rpnFunctionInSet, rpnFunctionNotInSet, rpnAlwaysFalse:
			stack = append(stack, false)
		case rpnFunctionNot:
			// NOT of an unusable condition is still unusable.
		case rpnFunctionAnd, rpnFunctionOr:
			n := el.arity
			if n < 2 || len(stack) < n {
				panic("keycond: corrupted RPN program")
			}
			res := stack[len(stack)-n]
			for _, v := range stack[len(stack)-n+1:] {
				if el.function == rpnFunctionAnd {
					res = res && v
				} else {
					res = res || v
				}
			}
			stack = stack[:len(stack)-n]
			stack = append(stack, res)
		}
	}
	if len(stack) != 1 {
		panic("keycond: corrupted RPN program")
	}
	return stack[0]
}

// MaxKeyColumn returns the highest sort-key position referenced by any range
// or set atom. Callers use it to size probe ranges.
func (kc *KeyCondition) MaxKeyColumn() int {
	max := 0
	for i := range kc.rpn {
		el := &kc.rpn[i]
		switch el.function {
		case rpnFunctionInRange, rpnFunctionNotInRange:
			if el.keyColumn > max {
				max = el.keyColumn
			}
		case rpnFunctionInSet, rpnFunctionNotInSet:
			if m := el.setIndex.maxKeyColumn(); m > max {
				max = m
			}
		}
	}
	return max
}

// AddCondition imposes an additional constraint: the value in column must be
// in rng. Returns false when the column is not part of the key. Used to fold
// partition-pruning conditions into an existing program; it mutates the
// program and therefore must happen before any concurrent evaluation.
func (kc *KeyCondition) AddCondition(column string, rng Range) bool {
	idx, ok := kc.keyColumns[column]
	if !ok {
		return false
	}
	rng.DataType = kc.keyTypes[idx]
	kc.rpn = append(kc.rpn,
		rpnElement{function: rpnFunctionInRange, keyColumn: idx, rangeValue: rng},
		rpnElement{function: rpnFunctionAnd, arity: 2},
	)
	return true
}

// --- Diagnostics ---

// columnDesc renders "chain(column N)" with the chain's nesting restored.
func (kc *KeyCondition) columnDesc(keyColumn int, chain MonotonicChain) string {
	desc := fmt.Sprintf("column %d", keyColumn)
	for _, fn := range chain {
		desc = fn.Name() + "(" + desc + ")"
	}
	return desc
}

func (kc *KeyCondition) elementString(el *rpnElement) string {
	switch el.function {
	case rpnFunctionInRange:
		return fmt.Sprintf("(%s in %s)", kc.columnDesc(el.keyColumn, el.chain), el.rangeValue)
	case rpnFunctionNotInRange:
		return fmt.Sprintf("(%s not in %s)", kc.columnDesc(el.keyColumn, el.chain), el.rangeValue)
	case rpnFunctionInSet, rpnFunctionNotInSet:
		cols := make([]string, len(el.setIndex.keyColumns))
		for i, kcol := range el.setIndex.keyColumns {
			cols[i] = kc.columnDesc(kcol, el.setIndex.chains[i])
		}
		desc := cols[0]
		if len(cols) > 1 {
			desc = "(" + strings.Join(cols, ", ") + ")"
		}
		verb := "in"
		if el.function == rpnFunctionNotInSet {
			verb = "not in"
		}
		return fmt.Sprintf("(%s %s %d-element set)", desc, verb, el.setIndex.size())
	case rpnFunctionUnknown:
		return "unknown"
	case rpnFunctionNot:
		return "not"
	case rpnFunctionAnd:
		return fmt.Sprintf("and(%d)", el.arity)
	case rpnFunctionOr:
		return fmt.Sprintf("or(%d)", el.arity)
	case rpnAlwaysTrue:
		return "true"
	case rpnAlwaysFalse:
		return "false"
	}
	return "?"
}

// String dumps the postfix program, one line per element, for query-plan
// diagnostics.
func (kc *KeyCondition) String() string {
	lines := make([]string, len(kc.rpn))
	for i := range kc.rpn {
		lines[i] = kc.elementString(&kc.rpn[i])
	}
	return strings.Join(lines, "\n")
}
