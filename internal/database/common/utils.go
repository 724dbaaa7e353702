package common

import (
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

// Column is one target table column with its inferred storage kind.
type Column struct {
	Name string
	Kind types.ColumnKind
}

// WriteRequest describes one bulk load into a single table.
type WriteRequest struct {
	Table     string
	Columns   []Column
	Rows      [][]interface{}
	Truncate  bool
	BatchSize int
}

func (r WriteRequest) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// BatchSize caps the requested rows per statement so that a multi-row insert
// stays under the driver's placeholder limit.
func BatchSize(requested, columns, maxParams int) int {
	if columns <= 0 {
		return 1
	}
	limit := maxParams / columns
	if limit < 1 {
		limit = 1
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

// Batches splits rows into consecutive slices of at most size rows.
func Batches(rows [][]interface{}, size int) [][][]interface{} {
	if size <= 0 {
		size = len(rows)
	}
	batches := make([][][]interface{}, 0, (len(rows)+size-1)/max(size, 1))
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		batches = append(batches, rows[start:end])
	}
	return batches
}

// TextValues renders date and timestamp cells as text for drivers that store
// them as strings.
func TextValues(columns []Column, row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		if v != nil && i < len(columns) && (columns[i].Kind == types.KindDate || columns[i].Kind == types.KindTimestamp) {
			out[i] = types.FormatValue(v)
			continue
		}
		out[i] = v
	}
	return out
}
