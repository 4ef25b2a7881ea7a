package storage

import (
	"github.com/harshithgowdakt/keyprune/internal/keycond"
	"github.com/harshithgowdakt/keyprune/internal/parser"
	"github.com/harshithgowdakt/keyprune/internal/types"
)

// PartitionPruner wraps a KeyCondition over the partition key columns and
// caches pruning results per partition ID, matching ClickHouse's
// PartitionPruner. The cache avoids re-loading and re-evaluating MinMax
// indexes for parts that share the same partition ID.
type PartitionPruner struct {
	condition *keycond.KeyCondition
	keyCols   []string
	keyTypes  []types.DataType
	cache     map[string]bool // partitionID -> canBePruned
}

// NewPartitionPruner creates a pruner for the given WHERE expression and
// schema. Returns nil when pruning is not applicable: no partition key, nil
// WHERE, or no usable conditions on the partition columns.
func NewPartitionPruner(where parser.Expression, schema *TableSchema) *PartitionPruner {
	if where == nil || schema.PartitionBy == "" {
		return nil
	}

	partExpr, err := parser.ParseExpression(schema.PartitionBy)
	if err != nil {
		return nil
	}
	colNames := parser.ExtractColumnRefs(partExpr)
	if len(colNames) == 0 {
		return nil
	}

	keyTypes := make([]types.DataType, 0, len(colNames))
	validCols := make([]string, 0, len(colNames))
	for _, col := range colNames {
		colDef, ok := schema.GetColumnDef(col)
		if !ok {
			continue
		}
		validCols = append(validCols, col)
		keyTypes = append(keyTypes, colDef.DataType)
	}
	if len(validCols) == 0 {
		return nil
	}

	cond := keycond.NewKeyCondition(where, validCols, keyTypes, keycond.FoldConstants(where), nil)
	if cond.AlwaysUnknownOrTrue() {
		return nil
	}

	return &PartitionPruner{
		condition: cond,
		keyCols:   validCols,
		keyTypes:  keyTypes,
		cache:     make(map[string]bool),
	}
}

// CanBePruned returns true if the part can be safely skipped: the WHERE
// condition is guaranteed false for all rows of the part, based on its MinMax
// indexes over the partition key columns.
func (pp *PartitionPruner) CanBePruned(part *Part) bool {
	pid := part.Info.PartitionID
	if result, ok := pp.cache[pid]; ok {
		return result
	}

	pg := make(keycond.Parallelogram, len(pp.keyCols))
	loadedAny := false
	for i, col := range pp.keyCols {
		dt := pp.keyTypes[i]
		// Missing index: unbounded range, the condition degrades to Maybe
		// on that coordinate.
		pg[i] = keycond.WholeUniverseRange(dt)
		idx, err := ReadMinMaxIndex(MinMaxIndexPath(part, col), col, dt)
		if err != nil {
			continue
		}
		loadedAny = true
		pg[i] = keycond.Range{
			Left:          idx.Min,
			Right:         idx.Max,
			LeftIncluded:  true,
			RightIncluded: true,
			DataType:      idx.DataType,
		}
	}
	if !loadedAny {
		pp.cache[pid] = false
		return false
	}

	pruned := !pp.condition.MayBeTrueInParallelogram(pg)
	pp.cache[pid] = pruned
	return pruned
}
