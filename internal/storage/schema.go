package storage

import "github.com/harshithgowdakt/keyprune/internal/types"

// ColumnDef defines a column in a table schema.
type ColumnDef struct {
	Name     string
	DataType types.DataType
}

// TableSchema defines the schema and engine settings for a MergeTree-style
// table.
type TableSchema struct {
	Columns     []ColumnDef
	OrderBy     []string // sort key column names (ORDER BY clause)
	PartitionBy string   // partition key expression or empty
	GranuleSize int      // rows per granule, default 8192
}

// GetColumnDef returns the ColumnDef for a column name.
func (s *TableSchema) GetColumnDef(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// SortKeyTypes returns the data types of the ORDER BY columns, in key order.
// Columns missing from the schema are reported via ok=false.
func (s *TableSchema) SortKeyTypes() ([]types.DataType, bool) {
	dts := make([]types.DataType, len(s.OrderBy))
	for i, name := range s.OrderBy {
		def, ok := s.GetColumnDef(name)
		if !ok {
			return nil, false
		}
		dts[i] = def.DataType
	}
	return dts, true
}

// EffectiveGranuleSize returns the granule size, defaulting to 8192.
func (s *TableSchema) EffectiveGranuleSize() int {
	if s.GranuleSize <= 0 {
		return DefaultGranuleSize
	}
	return s.GranuleSize
}
