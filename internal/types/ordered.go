package types

// OrderedValue extends a scalar Value with minus/plus infinity sentinels and
// a total order. It exists only for range-intersection arithmetic: unbounded
// range endpoints become infinities, so every endpoint comparison is a single
// three-way Compare with no nil special cases.
type OrderedValue struct {
	kind  int8 // -1 minus infinity, 0 normal, +1 plus infinity
	value Value
	dt    DataType
}

// MinusInfinity returns the value below every normal value.
func MinusInfinity() OrderedValue {
	return OrderedValue{kind: -1}
}

// PlusInfinity returns the value above every normal value.
func PlusInfinity() OrderedValue {
	return OrderedValue{kind: 1}
}

// NewOrdered wraps a normal value of the given type.
func NewOrdered(dt DataType, v Value) OrderedValue {
	return OrderedValue{value: v, dt: dt}
}

// IsInfinite reports whether the value is one of the two sentinels.
func (a OrderedValue) IsInfinite() bool {
	return a.kind != 0
}

// Value returns the wrapped value; nil for infinities.
func (a OrderedValue) Value() Value {
	return a.value
}

// Compare returns -1, 0 or 1. Minus infinity is below every normal value,
// plus infinity above; normal values compare by the underlying type's order.
// Comparing normal values of different DataTypes is a caller bug.
func (a OrderedValue) Compare(b OrderedValue) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	if a.kind != 0 {
		return 0
	}
	return CompareValues(a.dt, a.value, b.value)
}
