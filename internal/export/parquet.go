package export

import (
	"context"
	"os"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/parquet-go/parquet-go"
)

const parquetRowBatch = 1024

// writeParquet builds a flat schema of optional leaves, one per column, typed
// from the inferred column kinds.
func writeParquet(ctx context.Context, path string, table *types.Table, _ Options) error {
	kinds := types.InferColumnKinds(table)

	group := make(parquet.Group, len(table.Columns))
	for i, name := range table.Columns {
		group[name] = parquet.Optional(parquetNode(kinds[i]))
	}
	schema := parquet.NewSchema("synthetic_patients", group)

	// leaves are ordered by field name, not by table column order
	leaf := make(map[string]int, len(table.Columns))
	for i, columnPath := range schema.Columns() {
		leaf[columnPath[0]] = i
	}

	return createFile(path, func(f *os.File) error {
		writer := parquet.NewWriter(f, schema,
			parquet.Compression(&parquet.Snappy),
			parquet.CreatedBy("cohortgen", "", ""),
		)

		batch := make([]parquet.Row, 0, parquetRowBatch)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if _, err := writer.WriteRows(batch); err != nil {
				return err
			}
			batch = batch[:0]
			return nil
		}

		for _, record := range table.Rows {
			row := make(parquet.Row, len(table.Columns))
			for c, name := range table.Columns {
				idx := leaf[name]
				row[idx] = parquetValue(kinds[c], record[name], idx)
			}
			batch = append(batch, row)

			if len(batch) == parquetRowBatch {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}
		return writer.Close()
	})
}

func parquetNode(kind types.ColumnKind) parquet.Node {
	switch kind {
	case types.KindInteger:
		return parquet.Int(64)
	case types.KindDate:
		return parquet.Date()
	case types.KindTimestamp:
		return parquet.Timestamp(parquet.Millisecond)
	default:
		return parquet.String()
	}
}

func parquetValue(kind types.ColumnKind, v interface{}, column int) parquet.Value {
	if v == nil {
		return parquet.NullValue().Level(0, 0, column)
	}

	var value parquet.Value
	switch kind {
	case types.KindInteger:
		n, _ := types.AsInt64(v)
		value = parquet.Int64Value(n)
	case types.KindDate:
		t := v.(time.Time)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		value = parquet.Int32Value(int32(day.Unix() / 86400))
	case types.KindTimestamp:
		value = parquet.Int64Value(v.(time.Time).UnixMilli())
	default:
		value = parquet.ByteArrayValue([]byte(types.FormatValue(v)))
	}
	return value.Level(0, 1, column)
}
