package storage

const DefaultGranuleSize = 8192

// MarkRange is a half-open range of granule indices [Begin, End).
type MarkRange struct {
	Begin int
	End   int
}

// Granules returns the number of granules covered.
func (mr MarkRange) Granules() int { return mr.End - mr.Begin }

// SplitIntoGranules computes the granule row boundaries for a part.
// Each returned range is [start, end) in row numbers.
func SplitIntoGranules(totalRows, granuleSize int) []MarkRange {
	if granuleSize <= 0 {
		granuleSize = DefaultGranuleSize
	}
	var result []MarkRange
	for start := 0; start < totalRows; start += granuleSize {
		end := start + granuleSize
		if end > totalRows {
			end = totalRows
		}
		result = append(result, MarkRange{Begin: start, End: end})
	}
	return result
}
