package keycond

import "testing"

func TestBoolMaskAnd(t *testing.T) {
	tests := []struct {
		name string
		a, b BoolMask
		want BoolMask
	}{
		{"true and true", MaskAlwaysTrue, MaskAlwaysTrue, MaskAlwaysTrue},
		{"true and false", MaskAlwaysTrue, MaskAlwaysFalse, MaskAlwaysFalse},
		{"false and maybe", MaskAlwaysFalse, MaskMaybe, MaskAlwaysFalse},
		{"true and maybe", MaskAlwaysTrue, MaskMaybe, MaskMaybe},
		{"maybe and maybe", MaskMaybe, MaskMaybe, MaskMaybe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.And(tt.b); got != tt.want {
				t.Errorf("And() = %+v, want %+v", got, tt.want)
			}
			// AND is commutative.
			if got := tt.b.And(tt.a); got != tt.want {
				t.Errorf("And() reversed = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoolMaskOr(t *testing.T) {
	tests := []struct {
		name string
		a, b BoolMask
		want BoolMask
	}{
		{"false or false", MaskAlwaysFalse, MaskAlwaysFalse, MaskAlwaysFalse},
		{"true or false", MaskAlwaysTrue, MaskAlwaysFalse, MaskAlwaysTrue},
		{"true or maybe", MaskAlwaysTrue, MaskMaybe, MaskAlwaysTrue},
		{"false or maybe", MaskAlwaysFalse, MaskMaybe, MaskMaybe},
		{"maybe or maybe", MaskMaybe, MaskMaybe, MaskMaybe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Or(tt.b); got != tt.want {
				t.Errorf("Or() = %+v, want %+v", got, tt.want)
			}
			if got := tt.b.Or(tt.a); got != tt.want {
				t.Errorf("Or() reversed = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoolMaskNot(t *testing.T) {
	tests := []struct {
		name string
		in   BoolMask
		want BoolMask
	}{
		{"not true", MaskAlwaysTrue, MaskAlwaysFalse},
		{"not false", MaskAlwaysFalse, MaskAlwaysTrue},
		{"not maybe", MaskMaybe, MaskMaybe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Not(); got != tt.want {
				t.Errorf("Not() = %+v, want %+v", got, tt.want)
			}
			// Double negation restores the mask.
			if got := tt.in.Not().Not(); got != tt.in {
				t.Errorf("Not().Not() = %+v, want %+v", got, tt.in)
			}
		})
	}
}
