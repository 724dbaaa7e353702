package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/database/common"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// maxParams is SQLITE_MAX_VARIABLE_NUMBER for the bundled SQLite.
const maxParams = 32766

type Adapter struct {
	db   *sql.DB
	qb   squirrel.StatementBuilderType
	path string
}

var typeMap = map[types.ColumnKind]string{
	types.KindText:      "TEXT",
	types.KindInteger:   "INTEGER",
	types.KindDate:      "TEXT",
	types.KindTimestamp: "TEXT",
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	if !strings.Contains(dbPath, "?") {
		dbPath += "?cache=shared&_journal_mode=WAL"
	}

	s.path = strings.TrimPrefix(url, "sqlite://")
	if idx := strings.Index(s.path, "?"); idx > 0 {
		s.path = s.path[:idx]
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) WriteTable(ctx context.Context, req common.WriteRequest) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(req)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", req.Table, err)
	}
	if req.Truncate {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quote(req.Table)); err != nil {
			return 0, fmt.Errorf("failed to truncate table %s: %w", req.Table, err)
		}
	}

	quoted := make([]string, len(req.Columns))
	for i, c := range req.Columns {
		quoted[i] = quote(c.Name)
	}

	var inserted int64
	size := common.BatchSize(req.BatchSize, len(req.Columns), maxParams)
	for _, batch := range common.Batches(req.Rows, size) {
		insert := s.qb.Insert(quote(req.Table)).Columns(quoted...)
		for _, row := range batch {
			insert = insert.Values(common.TextValues(req.Columns, row)...)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("failed to build insert: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert into %s: %w", req.Table, err)
		}
		n, _ := result.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

func (s *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	query, args, err := s.qb.Select("COUNT(*)").From(quote(table)).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

func createTableSQL(req common.WriteRequest) string {
	defs := make([]string, len(req.Columns))
	for i, c := range req.Columns {
		defs[i] = fmt.Sprintf("%s %s", quote(c.Name), typeMap[c.Kind])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(req.Table), strings.Join(defs, ", "))
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
