package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/rs/zerolog"
)

const (
	ColExtractDate      = "ExtractDate"
	ColDistrict         = "District"
	ColFacilityDesc     = "FacilityDesc"
	ColSpecialtyName    = "SpecialtyName"
	ColSubSpecialtyName = "SubSpecialtyName"
	ColDoctorName       = "DoctorName"
	ColProcedureType    = "ProcedureType"
	ColCategory         = "Category"
	ColAge              = "Age"
	ColRecordCount      = "#of Records"
)

const (
	MaxRecordCount = 1_000_000
	MaxAge         = 150
)

// CohortColumns are the headers every cohort table must carry.
var CohortColumns = []string{
	ColExtractDate, ColDistrict, ColFacilityDesc, ColSpecialtyName, ColSubSpecialtyName,
	ColDoctorName, ColProcedureType, ColCategory, ColAge, ColRecordCount,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"01-02-06",
}

// LoadCohorts reads and parses the cohort table. A missing header or an
// unusable record count aborts the load.
func LoadCohorts(path, sheet string, logger zerolog.Logger) ([]types.CohortRow, error) {
	s, err := ReadSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	if err := s.Require(CohortColumns...); err != nil {
		return nil, err
	}

	cohorts := make([]types.CohortRow, 0, len(s.Rows))
	for i, row := range s.Rows {
		line := i + 2 // header is line 1

		count, err := parseCount(s.Value(row, ColRecordCount))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid %q: %w", path, line, ColRecordCount, err)
		}

		c := types.CohortRow{
			Line:             line,
			ExtractDate:      s.Value(row, ColExtractDate),
			District:         s.Value(row, ColDistrict),
			FacilityDesc:     s.Value(row, ColFacilityDesc),
			SpecialtyName:    s.Value(row, ColSpecialtyName),
			SubSpecialtyName: s.Value(row, ColSubSpecialtyName),
			DoctorName:       s.Value(row, ColDoctorName),
			ProcedureType:    s.Value(row, ColProcedureType),
			Category:         normalizeCategory(s.Value(row, ColCategory)),
			RecordCount:      count,
		}
		c.HasCategory = c.Category != ""

		if ts, ok := ParseTime(c.ExtractDate); ok {
			c.ExtractTime = ts
			c.HasExtractTime = true
		} else if c.ExtractDate != "" {
			logger.Warn().Int("line", line).Str("value", c.ExtractDate).Msg("unparseable ExtractDate, timestamps will use the current time")
		}

		if raw := s.Value(row, ColAge); raw != "" {
			age, err := parseWhole(raw)
			switch {
			case err == nil && age > MaxAge:
				return nil, fmt.Errorf("%s line %d: invalid %q: %d is above the maximum of %d", path, line, ColAge, age, MaxAge)
			case err == nil && age >= 0:
				c.Age = &age
			default:
				logger.Warn().Int("line", line).Str("value", raw).Msg("unparseable Age, date of birth will be null")
			}
		}

		cohorts = append(cohorts, c)
	}

	logger.Debug().Str("path", path).Int("cohorts", len(cohorts)).Msg("loaded cohort table")
	return cohorts, nil
}

// ParseTime accepts the date layouts commonly produced by spreadsheet exports.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	n, err := parseWhole(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	if n > MaxRecordCount {
		return 0, fmt.Errorf("count %d is above the maximum of %d", n, MaxRecordCount)
	}
	return n, nil
}

// parseWhole parses integers written either as "5" or as "5.0".
func parseWhole(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a whole number: %q", raw)
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("out of range: %q", raw)
	}
	return int(f), nil
}

// normalizeCategory turns spreadsheet renderings like "9.0" into "9".
func normalizeCategory(raw string) string {
	if strings.HasSuffix(raw, ".0") {
		if n, err := parseWhole(raw); err == nil {
			return strconv.Itoa(n)
		}
	}
	return raw
}
