package keycond

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

// PreparedSet is a materialized IN-list: tuples of raw literal values. For
// single-column IN each tuple has one element. Sets are built by an external
// collaborator (subquery execution) or, for literal lists, inline by the
// compiler.
type PreparedSet struct {
	Tuples [][]types.Value
}

// PreparedSets maps the SQL text of an IN right-hand side to its set.
type PreparedSets map[string]*PreparedSet

// setIndex answers "could a box of per-column ranges intersect at least one
// tuple of the set". It stores the tuples coerced to the image types of the
// per-coordinate monotonic chains, and for each coordinate the key-column
// position and chain needed to transform a probe range before testing.
type setIndex struct {
	keyColumns []int
	chains     []MonotonicChain
	valueTypes []types.DataType
	tuples     [][]types.Value
}

// newSetIndex coerces and deduplicates the set tuples. Returns an error when
// a tuple has the wrong width or a value cannot represent the coordinate's
// type; the caller then degrades the atom to UNKNOWN.
func newSetIndex(keyColumns []int, chains []MonotonicChain, valueTypes []types.DataType, set *PreparedSet) (*setIndex, error) {
	si := &setIndex{
		keyColumns: keyColumns,
		chains:     chains,
		valueTypes: valueTypes,
	}
	seen := make(map[uint64]bool, len(set.Tuples))
	for _, tuple := range set.Tuples {
		if len(tuple) != len(keyColumns) {
			return nil, fmt.Errorf("set tuple has %d elements, want %d", len(tuple), len(keyColumns))
		}
		coerced := make([]types.Value, len(tuple))
		for i, v := range tuple {
			cv, ok := types.CoerceValue(valueTypes[i], v)
			if !ok {
				return nil, fmt.Errorf("set value %v not coercible to %s", v, valueTypes[i].Name())
			}
			coerced[i] = cv
		}
		h := hashTuple(si.valueTypes, coerced)
		if seen[h] {
			continue
		}
		seen[h] = true
		si.tuples = append(si.tuples, coerced)
	}
	return si, nil
}

// hashTuple produces a dedup key for a coerced tuple.
func hashTuple(valueTypes []types.DataType, tuple []types.Value) uint64 {
	d := xxhash.New()
	var lenBuf [4]byte
	for i, v := range tuple {
		s := types.ValueToString(valueTypes[i], v)
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
		_, _ = d.Write(lenBuf[:])
		_, _ = d.WriteString(s)
	}
	return d.Sum64()
}

// size returns the number of distinct tuples.
func (si *setIndex) size() int { return len(si.tuples) }

// maxKeyColumn returns the highest key position referenced.
func (si *setIndex) maxKeyColumn() int {
	max := 0
	for _, k := range si.keyColumns {
		if k > max {
			max = k
		}
	}
	return max
}

// checkInParallelogram tests whether the probe box can intersect the set.
// Per coordinate, the probe range is transformed through that coordinate's
// chain; a failed transform degrades the whole test to Maybe. The result can
// prove "always false" (no tuple inside the box) and, when the box is a
// single point on every coordinate, "always true".
func (si *setIndex) checkInParallelogram(pg Parallelogram, keyTypes []types.DataType) BoolMask {
	probes := make([]Range, len(si.keyColumns))
	singlePoint := true
	for i, keyCol := range si.keyColumns {
		probe := WholeUniverseRange(keyTypes[keyCol])
		if keyCol < len(pg) {
			probe = pg[keyCol]
		}
		transformed, ok := si.chains[i].ApplyToRange(probe)
		if !ok {
			return MaskMaybe
		}
		probes[i] = transformed
		if !transformed.isSinglePoint() {
			singlePoint = false
		}
	}

	anyInside := false
	for _, tuple := range si.tuples {
		inside := true
		for i, probe := range probes {
			if !probe.containsValue(tuple[i]) {
				inside = false
				break
			}
		}
		if inside {
			anyInside = true
			break
		}
	}

	if !anyInside {
		return MaskAlwaysFalse
	}
	if singlePoint {
		return MaskAlwaysTrue
	}
	return MaskMaybe
}
