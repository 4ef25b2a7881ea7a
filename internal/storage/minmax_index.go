package storage

import (
	"bytes"
	"path/filepath"

	"github.com/harshithgowdakt/keyprune/internal/types"
)

// MinMaxIndex stores the min and max values of one column within a part.
type MinMaxIndex struct {
	ColumnName string
	DataType   types.DataType
	Min        types.Value
	Max        types.Value
}

// MinMaxIndexPath returns the index file path for a column of a part.
func MinMaxIndexPath(part *Part, column string) string {
	return filepath.Join(part.BasePath, "minmax_"+column+".idx")
}

// WriteMinMaxIndex writes the min-max index as a compressed block.
func WriteMinMaxIndex(path string, idx *MinMaxIndex) error {
	var buf bytes.Buffer
	if err := EncodeValue(&buf, idx.DataType, idx.Min); err != nil {
		return err
	}
	if err := EncodeValue(&buf, idx.DataType, idx.Max); err != nil {
		return err
	}
	return writeIndexFile(path, buf.Bytes())
}

// ReadMinMaxIndex reads the min-max index from a file.
func ReadMinMaxIndex(path string, colName string, dt types.DataType) (*MinMaxIndex, error) {
	payload, err := readIndexFile(path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(payload)
	minVal, err := DecodeValue(r, dt)
	if err != nil {
		return nil, err
	}
	maxVal, err := DecodeValue(r, dt)
	if err != nil {
		return nil, err
	}
	return &MinMaxIndex{
		ColumnName: colName,
		DataType:   dt,
		Min:        minVal,
		Max:        maxVal,
	}, nil
}

// ComputeMinMax computes min and max over a column's values.
func ComputeMinMax(dt types.DataType, values []types.Value) (minV, maxV types.Value) {
	if len(values) == 0 {
		return nil, nil
	}
	minV = values[0]
	maxV = values[0]
	for _, v := range values[1:] {
		if types.CompareValues(dt, v, minV) < 0 {
			minV = v
		}
		if types.CompareValues(dt, v, maxV) > 0 {
			maxV = v
		}
	}
	return minV, maxV
}
