package keycond

import (
	"strings"
	"testing"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

func TestInSetSingleColumn(t *testing.T) {
	cols, dts := int64Key("id")
	kc := compileCond(t, "id IN (1, 5, 9)", cols, dts)

	if kc.AlwaysUnknownOrTrue() {
		t.Fatal("IN atom should make the index usable")
	}

	probe := func(lo, hi int64) bool {
		return kc.MayBeTrueInRange(1,
			[]types.Value{lo}, []types.Value{hi},
			[]types.DataType{types.TypeInt64})
	}

	if probe(2, 4) {
		t.Error("[2, 4] contains no set element, should be pruned")
	}
	if !probe(4, 6) {
		t.Error("[4, 6] contains 5, should match")
	}
	if !probe(0, 100) {
		t.Error("wide range contains set elements")
	}
	if probe(10, 20) {
		t.Error("[10, 20] is above all elements, should be pruned")
	}
}

func TestInSetPointProbe(t *testing.T) {
	cols, dts := int64Key("id")
	kc := compileCond(t, "id IN (1, 5, 9)", cols, dts)

	inside := Parallelogram{PointRange(int64(5), types.TypeInt64)}
	if mask := kc.CheckInParallelogram(inside); mask != MaskAlwaysTrue {
		t.Errorf("point probe on member = %+v, want always true", mask)
	}

	outside := Parallelogram{PointRange(int64(4), types.TypeInt64)}
	if mask := kc.CheckInParallelogram(outside); mask != MaskAlwaysFalse {
		t.Errorf("point probe on non-member = %+v, want always false", mask)
	}
}

func TestNotInSet(t *testing.T) {
	cols, dts := int64Key("id")
	kc := compileCond(t, "id NOT IN (1, 5, 9)", cols, dts)

	// A single-point box sitting exactly on a member is definitely false.
	member := Parallelogram{PointRange(int64(5), types.TypeInt64)}
	if kc.MayBeTrueInParallelogram(member) {
		t.Error("NOT IN should prune a point box on a member")
	}

	// A box containing no member is definitely true.
	gap := Parallelogram{Range{
		Left: int64(2), Right: int64(4),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}}
	if mask := kc.CheckInParallelogram(gap); mask != MaskAlwaysTrue {
		t.Errorf("NOT IN over a gap = %+v, want always true", mask)
	}

	// A wider box holding members and non-members stays maybe.
	wide := Parallelogram{Range{
		Left: int64(0), Right: int64(100),
		LeftIncluded: true, RightIncluded: true,
		DataType: types.TypeInt64,
	}}
	if mask := kc.CheckInParallelogram(wide); mask != MaskMaybe {
		t.Errorf("NOT IN over a wide box = %+v, want maybe", mask)
	}
}

func TestInSetMultiColumn(t *testing.T) {
	cols, dts := int64Key("a", "b")
	kc := compileCond(t, "(a, b) IN ((1, 2), (3, 4))", cols, dts)

	if got := kc.MaxKeyColumn(); got != 1 {
		t.Fatalf("MaxKeyColumn = %d, want 1", got)
	}

	hit := Parallelogram{
		PointRange(int64(1), types.TypeInt64),
		PointRange(int64(2), types.TypeInt64),
	}
	if mask := kc.CheckInParallelogram(hit); mask != MaskAlwaysTrue {
		t.Errorf("tuple member = %+v, want always true", mask)
	}

	// Coordinates taken from different tuples do not form a member.
	miss := Parallelogram{
		PointRange(int64(1), types.TypeInt64),
		PointRange(int64(4), types.TypeInt64),
	}
	if kc.MayBeTrueInParallelogram(miss) {
		t.Error("(1, 4) crosses tuples, should be pruned")
	}

	box := Parallelogram{
		Range{Left: int64(0), Right: int64(10), LeftIncluded: true, RightIncluded: true, DataType: types.TypeInt64},
		PointRange(int64(4), types.TypeInt64),
	}
	if mask := kc.CheckInParallelogram(box); mask != MaskMaybe {
		t.Errorf("box holding (3, 4) = %+v, want maybe", mask)
	}
}

func TestInSetWithChain(t *testing.T) {
	cols := []string{"date"}
	dts := []types.DataType{types.TypeDate}
	kc := compileCond(t, "toYYYYMM(date) IN (202001, 202003)", cols, dts)

	probe := func(lo, hi string) bool {
		return kc.MayBeTrueInRange(1,
			[]types.Value{dateDays(t, lo)}, []types.Value{dateDays(t, hi)},
			[]types.DataType{types.TypeDate})
	}

	if probe("2020-02-01", "2020-02-29") {
		t.Error("February part should be pruned")
	}
	if !probe("2020-03-05", "2020-03-20") {
		t.Error("March part should match")
	}
	if !probe("2020-01-20", "2020-02-10") {
		t.Error("part straddling January should match")
	}
}

func TestInSetPreparedExternally(t *testing.T) {
	cols, dts := int64Key("id")
	sets := PreparedSets{
		"allowed_ids": {Tuples: [][]types.Value{{int64(10)}, {int64(20)}}},
	}
	kc := NewKeyCondition(mustParseExpr(t, "id IN allowed_ids"), cols, dts, nil, sets)

	if kc.AlwaysUnknownOrTrue() {
		t.Fatal("prepared set should compile to a usable atom")
	}
	if kc.MayBeTrueInRange(1, []types.Value{int64(11)}, []types.Value{int64(19)}, []types.DataType{types.TypeInt64}) {
		t.Error("gap between prepared elements should be pruned")
	}
	if !kc.MayBeTrueInRange(1, []types.Value{int64(15)}, []types.Value{int64(25)}, []types.DataType{types.TypeInt64}) {
		t.Error("range containing 20 should match")
	}
}

func TestInSetUnresolvedRightSide(t *testing.T) {
	cols, dts := int64Key("id")
	// No prepared set and the right side is not a literal list: the atom
	// degrades to UNKNOWN instead of failing compilation.
	kc := NewKeyCondition(mustParseExpr(t, "id IN missing_set"), cols, dts, nil, nil)
	if !kc.AlwaysUnknownOrTrue() {
		t.Error("unresolvable IN should degrade to unknown")
	}
}

func TestInSetDeduplicates(t *testing.T) {
	cols, dts := int64Key("id")
	kc := compileCond(t, "id IN (1, 1, 1, 5)", cols, dts)
	if !strings.Contains(kc.String(), "2-element set") {
		t.Errorf("duplicates should collapse:\n%s", kc)
	}
}

func TestInSetValueCoercion(t *testing.T) {
	cols := []string{"date"}
	dts := []types.DataType{types.TypeDate}
	kc := compileCond(t, "date IN ('2020-01-01', '2020-06-15')", cols, dts)

	hit := kc.MayBeTrueInRange(1,
		[]types.Value{dateDays(t, "2020-06-01")},
		[]types.Value{dateDays(t, "2020-06-30")},
		[]types.DataType{types.TypeDate})
	if !hit {
		t.Error("June range contains 2020-06-15")
	}

	miss := kc.MayBeTrueInRange(1,
		[]types.Value{dateDays(t, "2020-02-01")},
		[]types.Value{dateDays(t, "2020-05-31")},
		[]types.DataType{types.TypeDate})
	if miss {
		t.Error("range between the two dates should be pruned")
	}
}
