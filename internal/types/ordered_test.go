package types

import "testing"

func TestOrderedValueCompare(t *testing.T) {
	minusInf := MinusInfinity()
	plusInf := PlusInfinity()
	five := NewOrdered(TypeInt64, int64(5))
	ten := NewOrdered(TypeInt64, int64(10))

	tests := []struct {
		name string
		a, b OrderedValue
		want int
	}{
		{"normal order", five, ten, -1},
		{"normal equal", five, five, 0},
		{"minus inf below normal", minusInf, five, -1},
		{"plus inf above normal", plusInf, ten, 1},
		{"minus inf below plus inf", minusInf, plusInf, -1},
		{"infinities equal themselves", plusInf, plusInf, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
			if got := tt.b.Compare(tt.a); got != -tt.want {
				t.Errorf("reverse Compare = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestOrderedValueAccessors(t *testing.T) {
	if !PlusInfinity().IsInfinite() || !MinusInfinity().IsInfinite() {
		t.Error("sentinels should report infinite")
	}
	v := NewOrdered(TypeInt64, int64(3))
	if v.IsInfinite() {
		t.Error("normal value should not be infinite")
	}
	if v.Value() != int64(3) {
		t.Errorf("Value = %v, want 3", v.Value())
	}
}
