package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/xuri/excelize/v2"
)

// Built-in number formats: 14 is a short date, 22 a date and time.
const (
	numFmtDate     = 14
	numFmtDateTime = 22
)

func writeXLSX(ctx context.Context, path string, table *types.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
		}
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtDate})
	if err != nil {
		return err
	}
	dateTimeStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtDateTime})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(table.Columns))
	for i, name := range table.Columns {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range table.Rows {
		if r%1000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		cells := make([]interface{}, len(table.Columns))
		for i, name := range table.Columns {
			switch v := row[name].(type) {
			case nil:
				cells[i] = nil
			case time.Time:
				style := dateTimeStyle
				if types.IsDate(v) {
					style = dateStyle
				}
				cells[i] = excelize.Cell{StyleID: style, Value: v}
			default:
				cells[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	return createFile(path, func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	})
}
