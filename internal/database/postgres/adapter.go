package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/database/common"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

var typeMap = map[types.ColumnKind]string{
	types.KindText:      "TEXT",
	types.KindInteger:   "BIGINT",
	types.KindDate:      "DATE",
	types.KindTimestamp: "TIMESTAMP",
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// WriteTable streams rows with COPY. BatchSize is ignored since COPY has no
// placeholder limit.
func (p *Adapter) WriteTable(ctx context.Context, req common.WriteRequest) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(req)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", req.Table, err)
	}
	if req.Truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pq.QuoteIdentifier(req.Table)); err != nil {
			return 0, fmt.Errorf("failed to truncate table %s: %w", req.Table, err)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{req.Table}, req.ColumnNames(), pgx.CopyFromRows(req.Rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows into %s: %w", req.Table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

func (p *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	query, args, err := p.qb.Select("COUNT(*)").From(pq.QuoteIdentifier(table)).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

func createTableSQL(req common.WriteRequest) string {
	defs := make([]string, len(req.Columns))
	for i, c := range req.Columns {
		defs[i] = fmt.Sprintf("%s %s", pq.QuoteIdentifier(c.Name), typeMap[c.Kind])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pq.QuoteIdentifier(req.Table), strings.Join(defs, ", "))
}
