package source

import (
	"math"
	"strconv"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/rs/zerolog"
)

const (
	ColColumnName     = "column_name"
	ColDataType       = "data_type"
	ColDataFormat     = "DataFormat"
	ColNullPercentage = "null_percentage"
	ColAvgValue       = "avg_value"
	ColStddevValue    = "stddev_value"
)

// SpecColumns are the headers every column specification table must carry.
// avg_value and stddev_value are optional.
var SpecColumns = []string{ColColumnName, ColDataType, ColDataFormat, ColNullPercentage}

// LoadColumnSpecs reads the column specification table. Duplicate names keep
// their first position; malformed null percentages count as 0.
func LoadColumnSpecs(path, sheet string, logger zerolog.Logger) (*types.ColumnSet, error) {
	s, err := ReadSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	if err := s.Require(SpecColumns...); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(s.Rows))
	columns := make([]*types.ColumnSpec, 0, len(s.Rows))

	for i, row := range s.Rows {
		line := i + 2
		name := s.Value(row, ColColumnName)
		if name == "" {
			logger.Warn().Int("line", line).Msg("column specification row without column_name skipped")
			continue
		}
		if seen[name] {
			logger.Warn().Int("line", line).Str("column", name).Msg("duplicate column specification ignored")
			continue
		}
		seen[name] = true

		rawNull := s.Value(row, ColNullPercentage)
		nullPct, ok := parsePercentage(rawNull)
		if !ok && rawNull != "" {
			logger.Warn().Str("column", name).Str("value", rawNull).Msg("non-numeric null_percentage treated as 0")
		}

		columns = append(columns, &types.ColumnSpec{
			Name:           name,
			DataType:       types.ParseDataType(s.Value(row, ColDataType)),
			DataFormat:     types.ParseDataFormat(s.Value(row, ColDataFormat)),
			NullPercentage: nullPct,
			AvgValue:       parseOptionalFloat(s.Value(row, ColAvgValue)),
			StddevValue:    parseOptionalFloat(s.Value(row, ColStddevValue)),
		})
	}

	logger.Debug().Str("path", path).Int("columns", len(columns)).Msg("loaded column specification")
	return types.NewColumnSet(columns), nil
}

// parsePercentage clamps to [0,100]. Anything unparseable yields 0, false.
func parsePercentage(raw string) (float64, bool) {
	f := parseOptionalFloat(raw)
	if f == nil {
		return 0, false
	}
	return math.Min(100, math.Max(0, *f)), true
}

func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
