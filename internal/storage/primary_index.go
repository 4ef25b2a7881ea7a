package storage

import (
	"bytes"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

// PrimaryIndexFileName is the index file inside a part directory.
const PrimaryIndexFileName = "primary.idx"

// PrimaryIndex stores the sort key values at each granule boundary: for each
// granule, the value of every ORDER BY column at its first row. Granule g
// therefore holds rows with keys in [Values[g], Values[g+1]]; the last
// granule is bounded only from below.
type PrimaryIndex struct {
	NumGranules int
	KeyColumns  []string
	KeyTypes    []types.DataType
	// Values[granuleIndex][keyColumnIndex] = value
	Values [][]types.Value
}

// PrimaryIndexPath returns the index file path for a part.
func PrimaryIndexPath(part *Part) string {
	return filepath.Join(part.BasePath, PrimaryIndexFileName)
}

// WritePrimaryIndex writes the primary index as a single compressed block.
func WritePrimaryIndex(path string, idx *PrimaryIndex) error {
	var buf bytes.Buffer
	rowSize := 0
	for _, dt := range idx.KeyTypes {
		rowSize += dt.FixedSize()
	}
	// String key columns report size 0, so this is a lower bound.
	buf.Grow(rowSize * len(idx.Values))
	for _, granuleValues := range idx.Values {
		for k, v := range granuleValues {
			if err := EncodeValue(&buf, idx.KeyTypes[k], v); err != nil {
				return errors.Wrap(err, "encoding primary index value")
			}
		}
	}
	return writeIndexFile(path, buf.Bytes())
}

// ReadPrimaryIndex reads the primary index from a file.
func ReadPrimaryIndex(path string, keyColumns []string, keyTypes []types.DataType, numGranules int) (*PrimaryIndex, error) {
	payload, err := readIndexFile(path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(payload)
	idx := &PrimaryIndex{
		NumGranules: numGranules,
		KeyColumns:  keyColumns,
		KeyTypes:    keyTypes,
		Values:      make([][]types.Value, numGranules),
	}
	for g := 0; g < numGranules; g++ {
		vals := make([]types.Value, len(keyColumns))
		for k, dt := range keyTypes {
			v, err := DecodeValue(r, dt)
			if err != nil {
				return nil, errors.Wrapf(err, "reading primary index granule %d key %d", g, k)
			}
			vals[k] = v
		}
		idx.Values[g] = vals
	}
	return idx, nil
}

// ReadPartPrimaryIndex reads a part's primary index using the schema's sort
// key columns.
func ReadPartPrimaryIndex(part *Part, schema *TableSchema) (*PrimaryIndex, error) {
	keyTypes, ok := schema.SortKeyTypes()
	if !ok {
		return nil, errors.Errorf("sort key references a column missing from the schema")
	}
	return ReadPrimaryIndex(PrimaryIndexPath(part), schema.OrderBy, keyTypes, part.NumGranules)
}

// BuildPartPrimaryIndex builds the boundary index using the schema's sort key
// and granule size.
func BuildPartPrimaryIndex(schema *TableSchema, keyData [][]types.Value) (*PrimaryIndex, error) {
	keyTypes, ok := schema.SortKeyTypes()
	if !ok {
		return nil, errors.Errorf("sort key references a column missing from the schema")
	}
	return BuildPrimaryIndex(schema.OrderBy, keyTypes, keyData, schema.EffectiveGranuleSize())
}

// BuildPrimaryIndex computes the boundary index from in-memory sort key
// columns. keyData[k][row] holds the k-th key column; rows must already be in
// sort key order.
func BuildPrimaryIndex(keyColumns []string, keyTypes []types.DataType, keyData [][]types.Value, granuleSize int) (*PrimaryIndex, error) {
	if len(keyData) != len(keyColumns) {
		return nil, errors.Errorf("have %d key columns but %d data columns", len(keyColumns), len(keyData))
	}
	numRows := 0
	if len(keyData) > 0 {
		numRows = len(keyData[0])
	}
	granules := SplitIntoGranules(numRows, granuleSize)

	idx := &PrimaryIndex{
		NumGranules: len(granules),
		KeyColumns:  keyColumns,
		KeyTypes:    keyTypes,
		Values:      make([][]types.Value, len(granules)),
	}
	for g, gr := range granules {
		vals := make([]types.Value, len(keyColumns))
		for k := range keyColumns {
			vals[k] = keyData[k][gr.Begin]
		}
		idx.Values[g] = vals
	}
	return idx, nil
}
