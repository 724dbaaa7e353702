package export

import (
	"context"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/database"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

const defaultTable = "synthetic_patients"

func writeSQLite(ctx context.Context, path string, table *types.Table, opts Options) error {
	adapter, err := database.NewAdapter("sqlite")
	if err != nil {
		return err
	}

	name := opts.Table
	if name == "" {
		name = defaultTable
	}

	_, err = database.Load(ctx, adapter, "sqlite://"+path+"?_journal_mode=DELETE", table, database.LoadOptions{
		Table:     name,
		BatchSize: opts.Batch,
	})
	return err
}
