package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/database/common"
)

// DatabaseAdapter loads generated tables into a relational database.
type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// WriteTable creates the table when missing, optionally empties it, and
	// inserts every row inside one transaction.
	WriteTable(ctx context.Context, req common.WriteRequest) (int64, error)
	CountRows(ctx context.Context, table string) (int64, error)
}
