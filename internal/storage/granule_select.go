package storage

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/harshithgowdakt/keyprune/internal/keycond"
)

// SelectMarkRanges returns the disjoint, ascending ranges of granules in
// which the condition may hold, evaluated against the part's primary index.
// Granule g spans keys [Values[g], Values[g+1]]; the last granule has no
// upper boundary and is checked against the semi-infinite tail.
//
// A nil or unusable condition selects everything.
func SelectMarkRanges(idx *PrimaryIndex, cond *keycond.KeyCondition, logger log.Logger, metrics *Metrics) []MarkRange {
	n := idx.NumGranules
	if n == 0 {
		return nil
	}
	if cond == nil || cond.AlwaysUnknownOrTrue() {
		metrics.addGranules(n, n)
		return []MarkRange{{Begin: 0, End: n}}
	}

	usedKeySize := len(idx.KeyColumns)
	var ranges []MarkRange
	for g := 0; g < n; g++ {
		var may bool
		if g+1 < n {
			may = cond.MayBeTrueInRange(usedKeySize, idx.Values[g], idx.Values[g+1], idx.KeyTypes)
		} else {
			may = cond.MayBeTrueAfter(usedKeySize, idx.Values[g], idx.KeyTypes)
		}
		if !may {
			continue
		}
		if len(ranges) > 0 && ranges[len(ranges)-1].End == g {
			ranges[len(ranges)-1].End = g + 1
		} else {
			ranges = append(ranges, MarkRange{Begin: g, End: g + 1})
		}
	}

	selected := 0
	for _, mr := range ranges {
		selected += mr.Granules()
	}
	metrics.addGranules(n, selected)
	if logger != nil {
		level.Debug(logger).Log(
			"msg", "selected mark ranges",
			"selected", selected,
			"total", n,
			"ranges", len(ranges),
		)
	}
	return ranges
}
