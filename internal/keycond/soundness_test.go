package keycond

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/keyprune/internal/parser"
	"github.com/harshithgowdakt/keyprune/internal/types"
)

// evalAt interprets a predicate over a single int64 key column directly, as
// the ground truth for the pruning oracle.
func evalAt(t *testing.T, e parser.Expression, x int64) bool {
	t.Helper()
	switch n := e.(type) {
	case *parser.BinaryExpr:
		switch n.Op {
		case "AND":
			return evalAt(t, n.Left, x) && evalAt(t, n.Right, x)
		case "OR":
			return evalAt(t, n.Left, x) || evalAt(t, n.Right, x)
		}
		lit, ok := n.Right.(*parser.LiteralExpr)
		require.True(t, ok, "comparison right side must be a literal")
		c, ok := lit.Value.(int64)
		require.True(t, ok, "literal must be an integer")
		switch n.Op {
		case "=":
			return x == c
		case "!=":
			return x != c
		case "<":
			return x < c
		case ">":
			return x > c
		case "<=":
			return x <= c
		case ">=":
			return x >= c
		}
	case *parser.UnaryExpr:
		if n.Op == "NOT" {
			return !evalAt(t, n.Expr, x)
		}
	}
	t.Fatalf("unexpected node %T in generated predicate", e)
	return false
}

func randPredicate(r *rand.Rand, depth int) string {
	if depth == 0 || r.Intn(3) == 0 {
		ops := []string{"=", "!=", "<", ">", "<=", ">="}
		return fmt.Sprintf("id %s %d", ops[r.Intn(len(ops))], r.Intn(50))
	}
	switch r.Intn(3) {
	case 0:
		return "(" + randPredicate(r, depth-1) + " AND " + randPredicate(r, depth-1) + ")"
	case 1:
		return "(" + randPredicate(r, depth-1) + " OR " + randPredicate(r, depth-1) + ")"
	default:
		return "NOT (" + randPredicate(r, depth-1) + ")"
	}
}

// TestPruningIsSound checks the oracle's one-sided guarantee on random
// predicates: whenever some point of a probe range satisfies the predicate,
// MayBeTrueInRange must report true. The converse (precision) is not
// required, so only false negatives fail.
func TestPruningIsSound(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	cols := []string{"id"}
	dts := []types.DataType{types.TypeInt64}

	for trial := 0; trial < 200; trial++ {
		sql := randPredicate(r, 3)
		expr := mustParseExpr(t, sql)
		kc := NewKeyCondition(expr, cols, dts, nil, nil)

		for probe := 0; probe < 20; probe++ {
			lo := int64(r.Intn(60))
			hi := lo + int64(r.Intn(20))

			feasible := false
			for x := lo; x <= hi; x++ {
				if evalAt(t, expr, x) {
					feasible = true
					break
				}
			}
			if !feasible {
				continue
			}

			got := kc.MayBeTrueInRange(1,
				[]types.Value{lo}, []types.Value{hi},
				[]types.DataType{types.TypeInt64})
			require.True(t, got,
				"unsound pruning: %s is satisfiable in [%d, %d]\nrpn:\n%s",
				sql, lo, hi, kc)
		}
	}
}

// TestPruningPointPrecision checks exactness on single-point probes: with no
// monotonic chains involved, the oracle on a point box must agree with direct
// evaluation in both directions.
func TestPruningPointPrecision(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	cols := []string{"id"}
	dts := []types.DataType{types.TypeInt64}

	for trial := 0; trial < 200; trial++ {
		sql := randPredicate(r, 3)
		expr := mustParseExpr(t, sql)
		kc := NewKeyCondition(expr, cols, dts, nil, nil)

		for x := int64(0); x < 55; x += 5 {
			want := evalAt(t, expr, x)
			mask := kc.CheckInParallelogram(Parallelogram{PointRange(x, types.TypeInt64)})
			require.Equal(t, want, mask.CanBeTrue,
				"point %d of %s\nrpn:\n%s", x, sql, kc)
			require.Equal(t, !want, mask.CanBeFalse,
				"point %d of %s\nrpn:\n%s", x, sql, kc)
		}
	}
}
