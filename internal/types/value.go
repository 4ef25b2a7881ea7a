package types

import (
	"fmt"
	"math"
	"time"
)

// Value represents a single database value. Concrete types use native Go types:
//   UInt8 -> uint8, UInt16 -> uint16, ..., String -> string,
//   Date -> uint16 (days since epoch), DateTime -> uint32 (unix timestamp)
type Value = interface{}

// ToFloat64 converts a numeric value to float64 for arithmetic.
func ToFloat64(dt DataType, v Value) (float64, error) {
	switch dt {
	case TypeUInt8:
		return float64(v.(uint8)), nil
	case TypeUInt16:
		return float64(v.(uint16)), nil
	case TypeUInt32:
		return float64(v.(uint32)), nil
	case TypeUInt64:
		return float64(v.(uint64)), nil
	case TypeInt8:
		return float64(v.(int8)), nil
	case TypeInt16:
		return float64(v.(int16)), nil
	case TypeInt32:
		return float64(v.(int32)), nil
	case TypeInt64:
		return float64(v.(int64)), nil
	case TypeFloat32:
		return float64(v.(float32)), nil
	case TypeFloat64:
		return v.(float64), nil
	case TypeDate:
		return float64(v.(uint16)), nil
	case TypeDateTime:
		return float64(v.(uint32)), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float64", dt.Name())
	}
}

// ToInt64 converts a numeric value to int64.
func ToInt64(dt DataType, v Value) (int64, error) {
	switch dt {
	case TypeUInt8:
		return int64(v.(uint8)), nil
	case TypeUInt16:
		return int64(v.(uint16)), nil
	case TypeUInt32:
		return int64(v.(uint32)), nil
	case TypeUInt64:
		return int64(v.(uint64)), nil
	case TypeInt8:
		return int64(v.(int8)), nil
	case TypeInt16:
		return int64(v.(int16)), nil
	case TypeInt32:
		return int64(v.(int32)), nil
	case TypeInt64:
		return v.(int64), nil
	case TypeFloat32:
		return int64(v.(float32)), nil
	case TypeFloat64:
		return int64(v.(float64)), nil
	case TypeDate:
		return int64(v.(uint16)), nil
	case TypeDateTime:
		return int64(v.(uint32)), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to int64", dt.Name())
	}
}

// CompareValues compares two values of the same DataType.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareValues(dt DataType, a, b Value) int {
	switch dt {
	case TypeUInt8:
		return cmpOrdered(a.(uint8), b.(uint8))
	case TypeUInt16:
		return cmpOrdered(a.(uint16), b.(uint16))
	case TypeUInt32:
		return cmpOrdered(a.(uint32), b.(uint32))
	case TypeUInt64:
		return cmpOrdered(a.(uint64), b.(uint64))
	case TypeInt8:
		return cmpOrdered(a.(int8), b.(int8))
	case TypeInt16:
		return cmpOrdered(a.(int16), b.(int16))
	case TypeInt32:
		return cmpOrdered(a.(int32), b.(int32))
	case TypeInt64:
		return cmpOrdered(a.(int64), b.(int64))
	case TypeFloat32:
		return cmpOrdered(a.(float32), b.(float32))
	case TypeFloat64:
		return cmpOrdered(a.(float64), b.(float64))
	case TypeString:
		return cmpOrdered(a.(string), b.(string))
	case TypeDate:
		return cmpOrdered(a.(uint16), b.(uint16))
	case TypeDateTime:
		return cmpOrdered(a.(uint32), b.(uint32))
	default:
		return 0
	}
}

type ordered interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// dateTimeLayouts are accepted when coercing string literals to Date/DateTime.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeLiteral(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceValue converts a raw literal value (int64, float64, string, bool, or
// an already-typed value) to the storage representation of dt. Returns false
// when the literal cannot represent a value of that type.
func CoerceValue(dt DataType, raw Value) (Value, bool) {
	switch v := raw.(type) {
	case bool:
		n := int64(0)
		if v {
			n = 1
		}
		return CoerceValue(dt, n)
	case int64:
		switch dt {
		case TypeUInt8:
			if v < 0 || v > 255 {
				return nil, false
			}
			return uint8(v), true
		case TypeUInt16:
			if v < 0 || v > 65535 {
				return nil, false
			}
			return uint16(v), true
		case TypeUInt32:
			if v < 0 || v > 4294967295 {
				return nil, false
			}
			return uint32(v), true
		case TypeUInt64:
			if v < 0 {
				return nil, false
			}
			return uint64(v), true
		case TypeInt8:
			if v < -128 || v > 127 {
				return nil, false
			}
			return int8(v), true
		case TypeInt16:
			if v < -32768 || v > 32767 {
				return nil, false
			}
			return int16(v), true
		case TypeInt32:
			if v < -2147483648 || v > 2147483647 {
				return nil, false
			}
			return int32(v), true
		case TypeInt64:
			return v, true
		case TypeFloat32:
			return float32(v), true
		case TypeFloat64:
			return float64(v), true
		case TypeDate:
			if v < 0 || v > 65535 {
				return nil, false
			}
			return uint16(v), true
		case TypeDateTime:
			if v < 0 || v > 4294967295 {
				return nil, false
			}
			return uint32(v), true
		}
		return nil, false
	case float64:
		switch dt {
		case TypeFloat32:
			return float32(v), true
		case TypeFloat64:
			return v, true
		}
		// Integer targets accept only whole floats.
		if v == float64(int64(v)) {
			return CoerceValue(dt, int64(v))
		}
		return nil, false
	case string:
		switch dt {
		case TypeString:
			return v, true
		case TypeDate:
			if t, ok := parseTimeLiteral(v); ok {
				return uint16(t.Unix() / 86400), true
			}
			return nil, false
		case TypeDateTime:
			if t, ok := parseTimeLiteral(v); ok {
				return uint32(t.Unix()), true
			}
			return nil, false
		}
		return nil, false
	case uint8, uint16, uint32, uint64, int8, int16, int32, float32:
		// Already-typed values pass through when the type matches; otherwise
		// normalize through int64/float64.
		if sameRepresentation(dt, raw) {
			return raw, true
		}
		switch w := raw.(type) {
		case float32:
			return CoerceValue(dt, float64(w))
		case uint64:
			if w > math.MaxInt64 {
				// Beyond int64; only float targets can represent these.
				switch dt {
				case TypeFloat32:
					return float32(w), true
				case TypeFloat64:
					return float64(w), true
				}
				return nil, false
			}
			return CoerceValue(dt, int64(w))
		case uint8:
			return CoerceValue(dt, int64(w))
		case uint16:
			return CoerceValue(dt, int64(w))
		case uint32:
			return CoerceValue(dt, int64(w))
		case int8:
			return CoerceValue(dt, int64(w))
		case int16:
			return CoerceValue(dt, int64(w))
		case int32:
			return CoerceValue(dt, int64(w))
		}
		return nil, false
	default:
		return nil, false
	}
}

// sameRepresentation reports whether v already has dt's native Go type.
func sameRepresentation(dt DataType, v Value) bool {
	switch dt {
	case TypeUInt8:
		_, ok := v.(uint8)
		return ok
	case TypeUInt16, TypeDate:
		_, ok := v.(uint16)
		return ok
	case TypeUInt32, TypeDateTime:
		_, ok := v.(uint32)
		return ok
	case TypeUInt64:
		_, ok := v.(uint64)
		return ok
	case TypeInt8:
		_, ok := v.(int8)
		return ok
	case TypeInt16:
		_, ok := v.(int16)
		return ok
	case TypeInt32:
		_, ok := v.(int32)
		return ok
	case TypeInt64:
		_, ok := v.(int64)
		return ok
	case TypeFloat32:
		_, ok := v.(float32)
		return ok
	case TypeFloat64:
		_, ok := v.(float64)
		return ok
	case TypeString:
		_, ok := v.(string)
		return ok
	}
	return false
}

// ValueToString converts a value to its string representation.
func ValueToString(dt DataType, v Value) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
