package storage

import "fmt"

// PartInfo identifies a part following ClickHouse naming:
// partition_minBlock_maxBlock_level.
type PartInfo struct {
	PartitionID string
	MinBlock    uint64
	MaxBlock    uint64
	Level       uint32
}

// DirName returns the directory name for this part.
func (pi PartInfo) DirName() string {
	return fmt.Sprintf("%s_%d_%d_%d", pi.PartitionID, pi.MinBlock, pi.MaxBlock, pi.Level)
}

// Contains returns true if this part's block range fully covers another
// part's range.
func (pi PartInfo) Contains(other PartInfo) bool {
	return pi.PartitionID == other.PartitionID &&
		pi.MinBlock <= other.MinBlock &&
		pi.MaxBlock >= other.MaxBlock &&
		pi.Level > other.Level
}

// Part represents a single data part on disk.
type Part struct {
	Info     PartInfo
	NumRows  uint64
	BasePath string // absolute path to the part directory

	NumGranules int
}

func (p *Part) String() string {
	return fmt.Sprintf("Part{%s, rows=%d, granules=%d}", p.Info.DirName(), p.NumRows, p.NumGranules)
}

// SelectActiveParts drops parts whose block range is covered by another part
// at a higher level: such parts have been superseded by a merge and must not
// be scanned, or their rows would be counted twice.
func SelectActiveParts(parts []*Part) []*Part {
	active := make([]*Part, 0, len(parts))
	for _, p := range parts {
		covered := false
		for _, other := range parts {
			if other != p && other.Info.Contains(p.Info) {
				covered = true
				break
			}
		}
		if !covered {
			active = append(active, p)
		}
	}
	return active
}
