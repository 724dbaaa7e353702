package database

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/database/common"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

type LoadOptions struct {
	Table     string
	Truncate  bool
	BatchSize int
}

// BuildRequest converts a generated table into a write request, inferring
// column kinds from the values.
func BuildRequest(table *types.Table, opts LoadOptions) common.WriteRequest {
	kinds := types.InferColumnKinds(table)
	columns := make([]common.Column, len(table.Columns))
	for i, name := range table.Columns {
		columns[i] = common.Column{Name: name, Kind: kinds[i]}
	}

	rows := make([][]interface{}, len(table.Rows))
	for r, record := range table.Rows {
		row := make([]interface{}, len(table.Columns))
		for i, name := range table.Columns {
			row[i] = record[name]
		}
		rows[r] = row
	}

	return common.WriteRequest{
		Table:     opts.Table,
		Columns:   columns,
		Rows:      rows,
		Truncate:  opts.Truncate,
		BatchSize: opts.BatchSize,
	}
}

// Load connects, writes the table and closes the connection.
func Load(ctx context.Context, adapter DatabaseAdapter, url string, table *types.Table, opts LoadOptions) (int64, error) {
	if opts.Table == "" {
		return 0, fmt.Errorf("target table name is required")
	}
	if len(table.Columns) == 0 {
		return 0, fmt.Errorf("nothing to load: table has no columns")
	}

	if err := adapter.Connect(ctx, url); err != nil {
		return 0, err
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		return 0, fmt.Errorf("failed to reach database: %w", err)
	}

	n, err := adapter.WriteTable(ctx, BuildRequest(table, opts))
	if err != nil {
		return 0, err
	}
	return n, nil
}
