package keycond

import (
	"strings"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

// Range represents a single-dimension interval with optional inclusive
// bounds. A nil Left means unbounded below; a nil Right means unbounded
// above. Both endpoints, when bounded, hold values of DataType, and the
// compiler never produces an inverted range (Left > Right).
type Range struct {
	Left          types.Value
	Right         types.Value
	LeftIncluded  bool
	RightIncluded bool
	DataType      types.DataType
}

// Parallelogram is a multi-dimensional box — one Range per key column
// position. Index i corresponds to the i-th column of the sort key.
type Parallelogram []Range

// WholeUniverseRange is the unbounded range over a column.
func WholeUniverseRange(dt types.DataType) Range {
	return Range{DataType: dt}
}

// PointRange is the single-value closed range [v, v].
func PointRange(v types.Value, dt types.DataType) Range {
	return Range{Left: v, Right: v, LeftIncluded: true, RightIncluded: true, DataType: dt}
}

// LeftBoundedRange is [v, +inf) when included, (v, +inf) otherwise.
func LeftBoundedRange(v types.Value, included bool, dt types.DataType) Range {
	return Range{Left: v, LeftIncluded: included, DataType: dt}
}

// RightBoundedRange is (-inf, v] when included, (-inf, v) otherwise.
func RightBoundedRange(v types.Value, included bool, dt types.DataType) Range {
	return Range{Right: v, RightIncluded: included, DataType: dt}
}

func (r Range) leftBound() types.OrderedValue {
	if r.Left == nil {
		return types.MinusInfinity()
	}
	return types.NewOrdered(r.DataType, r.Left)
}

func (r Range) rightBound() types.OrderedValue {
	if r.Right == nil {
		return types.PlusInfinity()
	}
	return types.NewOrdered(r.DataType, r.Right)
}

// isSinglePoint reports whether the range holds exactly one value.
func (r Range) isSinglePoint() bool {
	if r.Left == nil || r.Right == nil || !r.LeftIncluded || !r.RightIncluded {
		return false
	}
	return types.CompareValues(r.DataType, r.Left, r.Right) == 0
}

// containsValue reports whether v (of the range's DataType) lies inside.
func (r Range) containsValue(v types.Value) bool {
	ov := types.NewOrdered(r.DataType, v)
	if c := r.leftBound().Compare(ov); c > 0 || (c == 0 && !r.LeftIncluded) {
		return false
	}
	if c := ov.Compare(r.rightBound()); c > 0 || (c == 0 && !r.RightIncluded) {
		return false
	}
	return true
}

// intersects reports whether the two ranges share at least one value.
// Both ranges must hold values of the same DataType.
func (r Range) intersects(other Range) bool {
	// r is entirely above other, or touches at an excluded endpoint.
	if c := r.leftBound().Compare(other.rightBound()); c > 0 ||
		(c == 0 && !(r.LeftIncluded && other.RightIncluded)) {
		return false
	}
	// other is entirely above r.
	if c := other.leftBound().Compare(r.rightBound()); c > 0 ||
		(c == 0 && !(other.LeftIncluded && r.RightIncluded)) {
		return false
	}
	return true
}

// covers reports whether every value of other lies inside r.
func (r Range) covers(other Range) bool {
	lc := r.leftBound().Compare(other.leftBound())
	if lc > 0 {
		return false
	}
	if lc == 0 && !r.leftBound().IsInfinite() && !r.LeftIncluded && other.LeftIncluded {
		return false
	}
	rc := r.rightBound().Compare(other.rightBound())
	if rc < 0 {
		return false
	}
	if rc == 0 && !r.rightBound().IsInfinite() && !r.RightIncluded && other.RightIncluded {
		return false
	}
	return true
}

// checkRangeIntersection evaluates a condition range against a probe range:
//   - CanBeTrue:  the two ranges overlap
//   - CanBeFalse: the condition range does not fully cover the probe range
func checkRangeIntersection(cond, probe Range) BoolMask {
	return BoolMask{
		CanBeTrue:  cond.intersects(probe),
		CanBeFalse: !cond.covers(probe),
	}
}

// String renders the range in interval notation, e.g. "[5, 10)", "(-inf, 3]".
func (r Range) String() string {
	var b strings.Builder
	if r.Left == nil {
		b.WriteString("(-inf")
	} else {
		if r.LeftIncluded {
			b.WriteByte('[')
		} else {
			b.WriteByte('(')
		}
		b.WriteString(types.ValueToString(r.DataType, r.Left))
	}
	b.WriteString(", ")
	if r.Right == nil {
		b.WriteString("+inf)")
	} else {
		b.WriteString(types.ValueToString(r.DataType, r.Right))
		if r.RightIncluded {
			b.WriteByte(']')
		} else {
			b.WriteByte(')')
		}
	}
	return b.String()
}
