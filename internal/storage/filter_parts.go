package storage

import (
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/harshithgowdakt/keyprune/internal/parser"
)

// PartFilterCounters records per-query counters for part-level pruning.
type PartFilterCounters struct {
	InitialParts  int
	SurvivedParts int
}

// FilterParts is the single entry point for part-level partition pruning.
// It drops parts superseded by a merge, creates a PartitionPruner from the
// WHERE expression and schema, then iterates over the remaining parts calling
// CanBePruned(). Parts that cannot be pruned are returned along with counters.
func FilterParts(where parser.Expression, schema *TableSchema, parts []*Part, logger log.Logger, metrics *Metrics) ([]*Part, PartFilterCounters) {
	parts = SelectActiveParts(parts)
	counters := PartFilterCounters{
		InitialParts: len(parts),
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	pruner := NewPartitionPruner(where, schema)
	if pruner == nil {
		counters.SurvivedParts = len(parts)
		if len(parts) > 0 {
			level.Debug(logger).Log("msg", "no partition pruning applicable", "parts", len(parts))
		}
		return parts, counters
	}

	filtered := make([]*Part, 0, len(parts))
	var prunedNames []string
	for _, part := range parts {
		if pruner.CanBePruned(part) {
			prunedNames = append(prunedNames, part.Info.DirName())
		} else {
			filtered = append(filtered, part)
		}
	}

	counters.SurvivedParts = len(filtered)
	metrics.addParts(len(parts), len(prunedNames))

	if len(prunedNames) > 0 {
		level.Info(logger).Log(
			"msg", "pruned parts by partition key",
			"partition_by", schema.PartitionBy,
			"pruned", len(prunedNames),
			"survived", len(filtered),
			"pruned_parts", strings.Join(prunedNames, ","),
		)
	} else {
		level.Debug(logger).Log("msg", "no parts pruned", "parts", len(parts))
	}

	return filtered, counters
}
