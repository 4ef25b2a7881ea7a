package keycond

import (
	"fmt"
	"time"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

// Monotonicity describes how a function behaves over a concrete value range.
type Monotonicity struct {
	// IsMonotonic reports whether the function is monotonic on the range.
	IsMonotonic bool
	// IsPositive is true for increasing, false for decreasing.
	IsPositive bool
	// IsAlwaysMonotonic means the range does not need to be consulted.
	IsAlwaysMonotonic bool
}

var (
	notMonotonic     = Monotonicity{}
	alwaysIncreasing = Monotonicity{IsMonotonic: true, IsPositive: true, IsAlwaysMonotonic: true}
	alwaysDecreasing = Monotonicity{IsMonotonic: true, IsPositive: false, IsAlwaysMonotonic: true}
	increasingHere   = Monotonicity{IsMonotonic: true, IsPositive: true}
	decreasingHere   = Monotonicity{IsMonotonic: true, IsPositive: false}
)

// MonotonicFunc is a single-argument scalar function that the key condition
// can see through: it can be applied to range endpoints, and it can report
// whether it is monotonic over a concrete endpoint domain.
type MonotonicFunc struct {
	name string
	// hasMonotonicityInfo gates chain resolution: functions registered only
	// for constant folding (e.g. toString) set it to false.
	hasMonotonicityInfo bool
	resultType          func(arg types.DataType) (types.DataType, bool)
	apply               func(dt types.DataType, v types.Value) (types.Value, error)
	monotonicity        func(dt types.DataType, left, right types.OrderedValue) Monotonicity
}

// Name returns the function's registry name.
func (f *MonotonicFunc) Name() string { return f.name }

// ResultType returns the value type the function produces for an argument
// type, or false if the function does not accept that type.
func (f *MonotonicFunc) ResultType(arg types.DataType) (types.DataType, bool) {
	return f.resultType(arg)
}

// Apply evaluates the function on a single value of type dt.
func (f *MonotonicFunc) Apply(dt types.DataType, v types.Value) (types.Value, error) {
	return f.apply(dt, v)
}

// MonotonicityOnRange reports the function's behavior over [left, right].
func (f *MonotonicFunc) MonotonicityOnRange(dt types.DataType, left, right types.OrderedValue) Monotonicity {
	if !f.hasMonotonicityInfo {
		return notMonotonic
	}
	return f.monotonicity(dt, left, right)
}

// MonotonicChain is an ordered list of functions wrapped around a key column,
// innermost first. Chains are produced once at compile time and are immutable
// thereafter; ApplyToRange never mutates the chain.
type MonotonicChain []*MonotonicFunc

// ResultType composes the chain's result type starting from the key column's
// own type.
func (chain MonotonicChain) ResultType(keyType types.DataType) (types.DataType, bool) {
	cur := keyType
	for _, fn := range chain {
		next, ok := fn.ResultType(cur)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// ApplyToRange transforms a range through the chain, innermost function
// first. Increasing links map endpoints in place; decreasing links swap the
// endpoints and their inclusivity flags; unbounded endpoints stay unbounded.
// After each link both bounded endpoints become inclusive, because a link may
// be only non-strictly monotonic and collapse an excluded endpoint onto an
// included image. If any link's monotonicity cannot be established for the
// concrete domain, the whole transform fails — all or nothing.
func (chain MonotonicChain) ApplyToRange(r Range) (Range, bool) {
	cur := r
	for _, fn := range chain {
		m := fn.MonotonicityOnRange(cur.DataType, cur.leftBound(), cur.rightBound())
		if !m.IsMonotonic {
			return Range{}, false
		}
		resType, ok := fn.ResultType(cur.DataType)
		if !ok {
			return Range{}, false
		}

		var newLeft, newRight types.Value
		if cur.Left != nil {
			v, err := fn.Apply(cur.DataType, cur.Left)
			if err != nil {
				return Range{}, false
			}
			newLeft = v
		}
		if cur.Right != nil {
			v, err := fn.Apply(cur.DataType, cur.Right)
			if err != nil {
				return Range{}, false
			}
			newRight = v
		}
		if !m.IsPositive {
			newLeft, newRight = newRight, newLeft
		}

		cur = Range{
			Left:          newLeft,
			Right:         newRight,
			LeftIncluded:  newLeft != nil,
			RightIncluded: newRight != nil,
			DataType:      resType,
		}
	}
	return cur, true
}

// LookupFunction returns a registered function by (lowercase) name.
func LookupFunction(name string) (*MonotonicFunc, bool) {
	fn, ok := functionRegistry[name]
	return fn, ok
}

func toTime(dt types.DataType, v types.Value) (time.Time, error) {
	switch dt {
	case types.TypeDate:
		return time.Unix(int64(v.(uint16))*86400, 0).UTC(), nil
	case types.TypeDateTime:
		return time.Unix(int64(v.(uint32)), 0).UTC(), nil
	default:
		n, err := types.ToInt64(dt, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected date or datetime, got %s", dt.Name())
		}
		return time.Unix(n, 0).UTC(), nil
	}
}

func dateArg(arg types.DataType) bool {
	return arg == types.TypeDate || arg == types.TypeDateTime
}

func fixedResult(dt types.DataType, accepts func(types.DataType) bool) func(types.DataType) (types.DataType, bool) {
	return func(arg types.DataType) (types.DataType, bool) {
		if !accepts(arg) {
			return 0, false
		}
		return dt, true
	}
}

func dateApply(f func(time.Time) types.Value) func(types.DataType, types.Value) (types.Value, error) {
	return func(dt types.DataType, v types.Value) (types.Value, error) {
		t, err := toTime(dt, v)
		if err != nil {
			return nil, err
		}
		return f(t), nil
	}
}

func alwaysIncreasingOn(types.DataType, types.OrderedValue, types.OrderedValue) Monotonicity {
	return alwaysIncreasing
}

// toMonth wraps around at year boundaries; it is monotonic only when both
// endpoints are bounded and fall in the same calendar year.
func toMonthMonotonicity(dt types.DataType, left, right types.OrderedValue) Monotonicity {
	if left.IsInfinite() || right.IsInfinite() {
		return notMonotonic
	}
	lt, lerr := toTime(dt, left.Value())
	rt, rerr := toTime(dt, right.Value())
	if lerr != nil || rerr != nil {
		return notMonotonic
	}
	if lt.Year() != rt.Year() {
		return notMonotonic
	}
	return increasingHere
}

// abs is increasing on [0, +inf) and decreasing on (-inf, 0]; it is not
// monotonic on ranges straddling zero. Unsigned types are the identity.
func absMonotonicity(dt types.DataType, left, right types.OrderedValue) Monotonicity {
	switch dt {
	case types.TypeUInt8, types.TypeUInt16, types.TypeUInt32, types.TypeUInt64,
		types.TypeDate, types.TypeDateTime:
		return alwaysIncreasing
	}
	if !left.IsInfinite() {
		if lf, err := types.ToFloat64(dt, left.Value()); err == nil && lf >= 0 {
			return increasingHere
		}
	}
	if !right.IsInfinite() {
		if rf, err := types.ToFloat64(dt, right.Value()); err == nil && rf <= 0 {
			return decreasingHere
		}
	}
	return notMonotonic
}

// functionRegistry is the static name-to-function table consulted during
// chain resolution and constant folding. It is built once and never mutated.
var functionRegistry = map[string]*MonotonicFunc{
	"toyear": {
		name:                "toYear",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeUInt16, dateArg),
		apply:               dateApply(func(t time.Time) types.Value { return uint16(t.Year()) }),
		monotonicity:        alwaysIncreasingOn,
	},
	"toyyyymm": {
		name:                "toYYYYMM",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeUInt32, dateArg),
		apply: dateApply(func(t time.Time) types.Value {
			return uint32(t.Year()*100 + int(t.Month()))
		}),
		monotonicity: alwaysIncreasingOn,
	},
	"toyyyymmdd": {
		name:                "toYYYYMMDD",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeUInt32, dateArg),
		apply: dateApply(func(t time.Time) types.Value {
			return uint32(t.Year()*10000 + int(t.Month())*100 + t.Day())
		}),
		monotonicity: alwaysIncreasingOn,
	},
	"todate": {
		name:                "toDate",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeDate, dateArg),
		apply: dateApply(func(t time.Time) types.Value {
			return uint16(t.Unix() / 86400)
		}),
		monotonicity: alwaysIncreasingOn,
	},
	"tomonth": {
		name:                "toMonth",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeUInt8, dateArg),
		apply:               dateApply(func(t time.Time) types.Value { return uint8(t.Month()) }),
		monotonicity:        toMonthMonotonicity,
	},
	"tofloat64": {
		name:                "toFloat64",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeFloat64, types.DataType.IsNumeric),
		apply: func(dt types.DataType, v types.Value) (types.Value, error) {
			return types.ToFloat64(dt, v)
		},
		monotonicity: alwaysIncreasingOn,
	},
	"toint64": {
		name:                "toInt64",
		hasMonotonicityInfo: true,
		resultType:          fixedResult(types.TypeInt64, types.DataType.IsInteger),
		apply: func(dt types.DataType, v types.Value) (types.Value, error) {
			return types.ToInt64(dt, v)
		},
		monotonicity: alwaysIncreasingOn,
	},
	"negate": {
		name:                "negate",
		hasMonotonicityInfo: true,
		resultType: func(arg types.DataType) (types.DataType, bool) {
			switch arg {
			case types.TypeFloat32, types.TypeFloat64:
				return types.TypeFloat64, true
			case types.TypeUInt64:
				// May not fit in Int64.
				return 0, false
			}
			if arg.IsInteger() {
				return types.TypeInt64, true
			}
			return 0, false
		},
		apply: func(dt types.DataType, v types.Value) (types.Value, error) {
			switch dt {
			case types.TypeFloat32, types.TypeFloat64:
				f, err := types.ToFloat64(dt, v)
				if err != nil {
					return nil, err
				}
				return -f, nil
			}
			n, err := types.ToInt64(dt, v)
			if err != nil {
				return nil, err
			}
			return -n, nil
		},
		monotonicity: func(types.DataType, types.OrderedValue, types.OrderedValue) Monotonicity {
			return alwaysDecreasing
		},
	},
	"abs": {
		name:                "abs",
		hasMonotonicityInfo: true,
		resultType: func(arg types.DataType) (types.DataType, bool) {
			switch arg {
			case types.TypeFloat32, types.TypeFloat64:
				return types.TypeFloat64, true
			}
			if arg.IsInteger() {
				return types.TypeInt64, true
			}
			return 0, false
		},
		apply: func(dt types.DataType, v types.Value) (types.Value, error) {
			switch dt {
			case types.TypeFloat32, types.TypeFloat64:
				f, err := types.ToFloat64(dt, v)
				if err != nil {
					return nil, err
				}
				if f < 0 {
					f = -f
				}
				return f, nil
			}
			n, err := types.ToInt64(dt, v)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				n = -n
			}
			return n, nil
		},
		monotonicity: absMonotonicity,
	},
	"tostring": {
		// Registered for constant folding only: string order does not agree
		// with numeric order, so chains through toString resolve to UNKNOWN.
		name:                "toString",
		hasMonotonicityInfo: false,
		resultType: func(types.DataType) (types.DataType, bool) {
			return types.TypeString, true
		},
		apply: func(dt types.DataType, v types.Value) (types.Value, error) {
			return types.ValueToString(dt, v), nil
		},
		monotonicity: func(types.DataType, types.OrderedValue, types.OrderedValue) Monotonicity {
			return notMonotonic
		},
	},
}
