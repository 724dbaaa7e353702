// Package source loads the cohort table and the column specification table
// from CSV files or Excel workbooks.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn marks an input table lacking a required header.
var ErrMissingColumn = errors.New("required column missing")

// Sheet is a header row plus data rows, with every row padded to the header width.
type Sheet struct {
	Path   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadSheet reads a CSV file or one worksheet of an Excel workbook. For
// workbooks an empty sheet name selects the first sheet.
func ReadSheet(path, sheet string) (*Sheet, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, err = readWorkbook(path, sheet)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no header row", path)
	}

	s := &Sheet{
		Path:   path,
		Header: make([]string, len(rows[0])),
		index:  make(map[string]int, len(rows[0])),
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		s.Header[i] = h
		if _, dup := s.index[h]; !dup && h != "" {
			s.index[h] = i
		}
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		padded := make([]string, len(s.Header))
		copy(padded, row)
		s.Rows = append(s.Rows, padded)
	}

	return s, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	return rows, nil
}

// Require fails with ErrMissingColumn when any of the headers is absent.
func (s *Sheet) Require(headers ...string) error {
	var missing []string
	for _, h := range headers {
		if _, ok := s.index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", s.Path, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func (s *Sheet) Has(header string) bool {
	_, ok := s.index[header]
	return ok
}

// Value returns the trimmed cell for a header, or "" when the header is absent.
func (s *Sheet) Value(row []string, header string) string {
	i, ok := s.index[header]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
