package storage

import "testing"

func TestPartInfoContains(t *testing.T) {
	merged := PartInfo{PartitionID: "202001", MinBlock: 1, MaxBlock: 4, Level: 1}

	tests := []struct {
		name  string
		other PartInfo
		want  bool
	}{
		{"covered source part", PartInfo{PartitionID: "202001", MinBlock: 2, MaxBlock: 3, Level: 0}, true},
		{"exact block range below", PartInfo{PartitionID: "202001", MinBlock: 1, MaxBlock: 4, Level: 0}, true},
		{"overlaps past the right edge", PartInfo{PartitionID: "202001", MinBlock: 3, MaxBlock: 5, Level: 0}, false},
		{"same level is never covered", PartInfo{PartitionID: "202001", MinBlock: 2, MaxBlock: 3, Level: 1}, false},
		{"other partition", PartInfo{PartitionID: "202002", MinBlock: 2, MaxBlock: 3, Level: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := merged.Contains(tt.other); got != tt.want {
				t.Errorf("Contains = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectActiveParts(t *testing.T) {
	merged := &Part{Info: PartInfo{PartitionID: "202001", MinBlock: 1, MaxBlock: 2, Level: 1}}
	src1 := &Part{Info: PartInfo{PartitionID: "202001", MinBlock: 1, MaxBlock: 1, Level: 0}}
	src2 := &Part{Info: PartInfo{PartitionID: "202001", MinBlock: 2, MaxBlock: 2, Level: 0}}
	other := &Part{Info: PartInfo{PartitionID: "202002", MinBlock: 1, MaxBlock: 1, Level: 0}}

	active := SelectActiveParts([]*Part{merged, src1, src2, other})
	if len(active) != 2 || active[0] != merged || active[1] != other {
		t.Errorf("active = %v, want [merged, other]", active)
	}
}

func TestFilterPartsDropsSupersededParts(t *testing.T) {
	root := t.TempDir()
	merged := makePart(t, root, "202001", "2020-01-01", "2020-01-31")
	merged.Info.Level = 1
	merged.Info.MaxBlock = 2
	stale := &Part{Info: PartInfo{PartitionID: "202001", MinBlock: 1, MaxBlock: 1}}

	kept, counters := FilterParts(nil, testSchema(), []*Part{merged, stale}, nil, nil)
	if len(kept) != 1 || kept[0] != merged {
		t.Errorf("kept = %v, want only the merged part", kept)
	}
	if counters.InitialParts != 1 || counters.SurvivedParts != 1 {
		t.Errorf("counters = %+v, want superseded part excluded before pruning", counters)
	}
}
