package types

import (
	"strings"
	"time"
)

type DataType int

const (
	DataTypeOther DataType = iota
	DataTypeInteger
	DataTypeBigInteger
	DataTypeTimestamp
)

func (t DataType) String() string {
	switch t {
	case DataTypeInteger:
		return "int"
	case DataTypeBigInteger:
		return "bigint"
	case DataTypeTimestamp:
		return "datetime2"
	default:
		return "other"
	}
}

// IsInteger reports whether values of the type are drawn from the statistical sampler.
func (t DataType) IsInteger() bool {
	return t == DataTypeInteger || t == DataTypeBigInteger
}

// ParseDataType maps the SQL-Server style type names used in column specification sheets.
func ParseDataType(raw string) DataType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "int", "integer", "smallint", "tinyint":
		return DataTypeInteger
	case "bigint":
		return DataTypeBigInteger
	case "datetime2", "datetime", "timestamp", "smalldatetime":
		return DataTypeTimestamp
	default:
		return DataTypeOther
	}
}

type DataFormat int

const (
	DataFormatOther DataFormat = iota
	DataFormatAlphaNumeric
	DataFormatFreeText
)

func (f DataFormat) String() string {
	switch f {
	case DataFormatAlphaNumeric:
		return "AlphaNumeric"
	case DataFormatFreeText:
		return "Mixed/Other"
	default:
		return "other"
	}
}

func ParseDataFormat(raw string) DataFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "alphanumeric", "alpha-numeric", "alpha numeric":
		return DataFormatAlphaNumeric
	case "mixed/other", "mixed", "free text", "freetext", "free-text", "text":
		return DataFormatFreeText
	default:
		return DataFormatOther
	}
}

type ColumnSpec struct {
	Name           string
	DataType       DataType
	DataFormat     DataFormat
	NullPercentage float64  // 0-100
	AvgValue       *float64 // nil when the sheet leaves it blank
	StddevValue    *float64
}

// ColumnSet is the column specification in sheet order with O(1) lookup by name.
type ColumnSet struct {
	Columns []*ColumnSpec
	byName  map[string]*ColumnSpec
}

func NewColumnSet(columns []*ColumnSpec) *ColumnSet {
	set := &ColumnSet{
		Columns: columns,
		byName:  make(map[string]*ColumnSpec, len(columns)),
	}
	for _, col := range columns {
		set.byName[col.Name] = col
	}
	return set
}

func (s *ColumnSet) Get(name string) (*ColumnSpec, bool) {
	col, ok := s.byName[name]
	return col, ok
}

func (s *ColumnSet) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *ColumnSet) Names() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// CohortRow describes a group of patients that share facility, specialty,
// doctor, procedure type, category and age.
type CohortRow struct {
	Line             int    // 1-based data line in the source file, for diagnostics
	ExtractDate      string // raw cell value
	ExtractTime      time.Time
	HasExtractTime   bool
	District         string
	FacilityDesc     string
	SpecialtyName    string
	SubSpecialtyName string
	DoctorName       string
	ProcedureType    string
	Category         string // raw, uncoerced
	HasCategory      bool
	Age              *int
	RecordCount      int
}

// Record maps a column name to its generated value. A nil value is a null cell.
type Record map[string]interface{}

type Table struct {
	Columns []string
	Rows    []Record
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// IsDate reports whether a time value carries no clock component.
func IsDate(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
