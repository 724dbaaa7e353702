package names

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/export"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet is one output list: its sheet or file name and its single column.
type Sheet struct {
	Name   string
	Column string
	Values []string
}

func (n *Names) Sheets() []Sheet {
	return []Sheet{
		{Name: "Specialties", Column: "SpecialtyName", Values: n.Specialties},
		{Name: "SubSpecialties", Column: "SubSpecialtyName", Values: n.SubSpecialties},
		{Name: "Doctors", Column: "DoctorName", Values: n.Doctors},
	}
}

func (s Sheet) table() *types.Table {
	t := &types.Table{Columns: []string{s.Column}, Rows: make([]types.Record, len(s.Values))}
	for i, v := range s.Values {
		t.Rows[i] = types.Record{s.Column: v}
	}
	return t
}

// WriteXLSX saves one workbook with a sheet per list.
func (n *Names) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range n.Sheets() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}

		if err := f.SetCellValue(sheet.Name, "A1", sheet.Column); err != nil {
			return err
		}
		for r, v := range sheet.Values {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".names-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteCSVDir writes <dir>/<Sheet>.csv for every list and returns the paths.
func (n *Names) WriteCSVDir(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	for _, sheet := range n.Sheets() {
		path, err := export.Write(ctx, sheet.table(), export.Options{
			Format: "csv",
			Path:   filepath.Join(dir, sheet.Name+".csv"),
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
