package export

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

func writeCSV(ctx context.Context, path string, table *types.Table, _ Options) error {
	return createFile(path, func(f *os.File) error {
		writer := csv.NewWriter(f)
		if err := writer.Write(table.Columns); err != nil {
			return err
		}

		values := make([]string, len(table.Columns))
		for r, row := range table.Rows {
			if r%1000 == 0 && ctx.Err() != nil {
				return ctx.Err()
			}
			for i, name := range table.Columns {
				values[i] = types.FormatValue(row[name])
			}
			if err := writer.Write(values); err != nil {
				return err
			}
		}

		writer.Flush()
		return writer.Error()
	})
}
