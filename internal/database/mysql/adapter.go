package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/database/common"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
)

const maxParams = 65535

type Adapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

var typeMap = map[types.ColumnKind]string{
	types.KindText:      "TEXT",
	types.KindInteger:   "BIGINT",
	types.KindDate:      "DATE",
	types.KindTimestamp: "DATETIME",
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open("mysql", toDSN(url))
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.db = db
	return nil
}

// toDSN converts a mysql:// URL into the driver's DSN form. Anything else is
// passed through unchanged.
func toDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")

	atIndex := strings.LastIndex(dsn, "@")
	if atIndex <= 0 {
		return dsn
	}
	credentials := dsn[:atIndex]
	remainder := dsn[atIndex+1:]

	slashIndex := strings.Index(remainder, "/")
	if slashIndex <= 0 {
		return dsn
	}
	hostPort := remainder[:slashIndex]
	dbAndParams := remainder[slashIndex+1:]

	replacer := strings.NewReplacer(
		"ssl-mode=REQUIRED", "tls=skip-verify",
		"ssl-mode=DISABLED", "tls=false",
		"ssl-mode=VERIFY_CA", "tls=true",
		"ssl-mode=VERIFY_IDENTITY", "tls=true",
		"sslmode=require", "tls=skip-verify",
		"sslmode=disable", "tls=false",
		"sslmode=verify-ca", "tls=true",
		"sslmode=verify-full", "tls=true",
	)
	return fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, replacer.Replace(dbAndParams))
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// WriteTable creates the table outside the transaction because MySQL DDL
// commits implicitly. Truncation uses DELETE for the same reason.
func (m *Adapter) WriteTable(ctx context.Context, req common.WriteRequest) (int64, error) {
	if _, err := m.db.ExecContext(ctx, createTableSQL(req)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", req.Table, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

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
		insert := m.qb.Insert(quote(req.Table)).Columns(quoted...)
		for _, row := range batch {
			insert = insert.Values(row...)
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

func (m *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	query, args, err := m.qb.Select("COUNT(*)").From(quote(table)).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

func createTableSQL(req common.WriteRequest) string {
	defs := make([]string, len(req.Columns))
	for i, c := range req.Columns {
		defs[i] = fmt.Sprintf("%s %s NULL", quote(c.Name), typeMap[c.Kind])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(req.Table), strings.Join(defs, ", "))
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
