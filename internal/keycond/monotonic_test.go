package keycond

import (
	"testing"
	"time"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

func dateDays(t *testing.T, s string) uint16 {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad date literal %q: %v", s, err)
	}
	return uint16(tm.Unix() / 86400)
}

func mustLookup(t *testing.T, name string) *MonotonicFunc {
	t.Helper()
	fn, ok := LookupFunction(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	return fn
}

func dateRange(t *testing.T, left, right string) Range {
	t.Helper()
	return Range{
		Left: dateDays(t, left), Right: dateDays(t, right),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeDate,
	}
}

func TestFunctionApply(t *testing.T) {
	d := dateDays(t, "2020-03-15")
	tests := []struct {
		fn   string
		want types.Value
	}{
		{"toyear", uint16(2020)},
		{"toyyyymm", uint32(202003)},
		{"toyyyymmdd", uint32(20200315)},
		{"tomonth", uint8(3)},
		{"todate", d},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got, err := mustLookup(t, tt.fn).Apply(types.TypeDate, d)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChainResultType(t *testing.T) {
	chain := MonotonicChain{mustLookup(t, "toyyyymm")}
	dt, ok := chain.ResultType(types.TypeDate)
	if !ok || dt != types.TypeUInt32 {
		t.Fatalf("ResultType = (%v, %v), want (UInt32, true)", dt, ok)
	}

	// toYYYYMM does not accept a plain integer column.
	if _, ok := chain.ResultType(types.TypeInt64); ok {
		t.Error("toYYYYMM should reject Int64")
	}

	// negate cannot represent the full UInt64 domain.
	neg := MonotonicChain{mustLookup(t, "negate")}
	if _, ok := neg.ResultType(types.TypeUInt64); ok {
		t.Error("negate should reject UInt64")
	}
}

func TestChainApplyToRangeIncreasing(t *testing.T) {
	chain := MonotonicChain{mustLookup(t, "toyyyymm")}
	out, ok := chain.ApplyToRange(dateRange(t, "2020-01-01", "2020-01-31"))
	if !ok {
		t.Fatal("transform failed")
	}
	want := Range{
		Left: uint32(202001), Right: uint32(202001),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeUInt32,
	}
	if out != want {
		t.Errorf("ApplyToRange = %+v, want %+v", out, want)
	}
}

func TestChainApplyToRangeDecreasing(t *testing.T) {
	chain := MonotonicChain{mustLookup(t, "negate")}
	in := Range{
		Left: int64(1), Right: int64(5),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}
	out, ok := chain.ApplyToRange(in)
	if !ok {
		t.Fatal("transform failed")
	}
	want := Range{
		Left: int64(-5), Right: int64(-1),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}
	if out != want {
		t.Errorf("ApplyToRange = %+v, want %+v", out, want)
	}
}

func TestChainApplyToRangeUnbounded(t *testing.T) {
	// negate maps [3, +inf) to (-inf, -3].
	chain := MonotonicChain{mustLookup(t, "negate")}
	out, ok := chain.ApplyToRange(LeftBoundedRange(int64(3), true, types.TypeInt64))
	if !ok {
		t.Fatal("transform failed")
	}
	if out.Left != nil || out.Right != int64(-3) || !out.RightIncluded {
		t.Errorf("ApplyToRange = %+v, want (-inf, -3]", out)
	}
}

func TestChainEndpointsBecomeInclusive(t *testing.T) {
	// Links may be only non-strictly monotonic, so an excluded endpoint
	// must become included after the transform.
	chain := MonotonicChain{mustLookup(t, "toint64")}
	in := Range{
		Left: int64(1), Right: int64(5),
		LeftIncluded: false, RightIncluded: false,
		DataType: types.TypeInt64,
	}
	out, ok := chain.ApplyToRange(in)
	if !ok {
		t.Fatal("transform failed")
	}
	if !out.LeftIncluded || !out.RightIncluded {
		t.Errorf("endpoints should become inclusive, got %+v", out)
	}
}

func TestAbsMonotonicity(t *testing.T) {
	chain := MonotonicChain{mustLookup(t, "abs")}

	// Straddling zero: not monotonic, whole transform fails.
	straddle := Range{
		Left: int64(-5), Right: int64(5),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}
	if _, ok := chain.ApplyToRange(straddle); ok {
		t.Error("abs over a range straddling zero should fail")
	}

	// Non-negative domain: increasing.
	pos := Range{
		Left: int64(2), Right: int64(7),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}
	out, ok := chain.ApplyToRange(pos)
	if !ok || out.Left != int64(2) || out.Right != int64(7) {
		t.Errorf("abs on [2, 7] = %+v, %v", out, ok)
	}

	// Negative domain: decreasing, endpoints swap.
	neg := Range{
		Left: int64(-7), Right: int64(-2),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}
	out, ok = chain.ApplyToRange(neg)
	if !ok || out.Left != int64(2) || out.Right != int64(7) {
		t.Errorf("abs on [-7, -2] = %+v, %v", out, ok)
	}
}

func TestToMonthMonotonicity(t *testing.T) {
	chain := MonotonicChain{mustLookup(t, "tomonth")}

	// Same calendar year: monotonic.
	out, ok := chain.ApplyToRange(dateRange(t, "2020-03-01", "2020-07-15"))
	if !ok {
		t.Fatal("toMonth within one year should transform")
	}
	if out.Left != uint8(3) || out.Right != uint8(7) {
		t.Errorf("toMonth range = %+v, want [3, 7]", out)
	}

	// Crossing a year boundary wraps around: not monotonic.
	if _, ok := chain.ApplyToRange(dateRange(t, "2019-11-01", "2020-02-01")); ok {
		t.Error("toMonth across years should fail")
	}

	// Unbounded probe: the year cannot be pinned down.
	if _, ok := chain.ApplyToRange(WholeUniverseRange(types.TypeDate)); ok {
		t.Error("toMonth over the universe should fail")
	}
}

func TestNonMonotonicFunctionBlocksChain(t *testing.T) {
	fn := mustLookup(t, "tostring")
	chain := MonotonicChain{fn}
	in := Range{
		Left: int64(1), Right: int64(5),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}
	if _, ok := chain.ApplyToRange(in); ok {
		t.Error("toString chain should never transform")
	}
}

func TestNestedChain(t *testing.T) {
	// toYear(toDate(dt)) over a DateTime range, innermost first.
	chain := MonotonicChain{mustLookup(t, "todate"), mustLookup(t, "toyear")}
	lo := uint32(time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC).Unix())
	hi := uint32(time.Date(2021, 2, 3, 4, 0, 0, 0, time.UTC).Unix())
	in := Range{
		Left: lo, Right: hi,
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeDateTime,
	}
	out, ok := chain.ApplyToRange(in)
	if !ok {
		t.Fatal("transform failed")
	}
	if out.Left != uint16(2019) || out.Right != uint16(2021) || out.DataType != types.TypeUInt16 {
		t.Errorf("ApplyToRange = %+v, want [2019, 2021] UInt16", out)
	}
}
