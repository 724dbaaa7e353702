package types

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ColumnKind is the storage type of a generated column, inferred from the
// values it actually holds.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindDate
	KindTimestamp
)

func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// InferColumnKinds returns one kind per table column. Columns mixing
// unrelated kinds, or holding only nulls, are text.
func InferColumnKinds(t *Table) []ColumnKind {
	kinds := make([]ColumnKind, len(t.Columns))
	for i, name := range t.Columns {
		kinds[i] = inferKind(t.Rows, name)
	}
	return kinds
}

func inferKind(rows []Record, name string) ColumnKind {
	var seen bool
	kind := KindText

	for _, row := range rows {
		v := row[name]
		if v == nil {
			continue
		}
		k := valueKind(v)
		if !seen {
			kind, seen = k, true
			continue
		}
		if k == kind {
			continue
		}
		switch {
		case (k == KindDate && kind == KindTimestamp) || (k == KindTimestamp && kind == KindDate):
			kind = KindTimestamp
		default:
			return KindText
		}
	}
	return kind
}

func valueKind(v interface{}) ColumnKind {
	switch x := v.(type) {
	case int, int32, int64:
		return KindInteger
	case time.Time:
		if IsDate(x) {
			return KindDate
		}
		return KindTimestamp
	default:
		return KindText
	}
}

// FormatValue renders a cell for text outputs. Nulls become the empty string.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if IsDate(x) {
			return x.Format(DateLayout)
		}
		return x.Format(DateTimeLayout)
	default:
		return fmt.Sprint(x)
	}
}

// AsInt64 converts integer cells; ok is false for anything else.
func AsInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	default:
		return 0, false
	}
}
