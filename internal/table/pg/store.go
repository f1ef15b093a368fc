// Package pg implements table.Table on Postgres for deployments that want the
// ledger in a real database instead of a CSV file. Rows keep their insertion
// order through a bigserial position column; the visible cells are plain text,
// exactly like sheet cells, so foreign or malformed data never breaks a read.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"labalog.org/internal/table"
)

// columns maps sheet column names to SQL column names, in positional order.
var columns = []struct{ sheet, sql string }{
	{"No", "no"},
	{"Tanggal", "tanggal"},
	{"Aplikasi", "aplikasi"},
	{"Jenis", "jenis"},
	{"Laba", "laba"},
}

type Store struct {
	db    *sql.DB
	table string
}

var _ table.Table = (*Store)(nil)

// Open connects to dsn. tableName must be a trusted identifier (it comes from
// configuration, not user input).
func Open(dsn, tableName string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewWithDB(db, tableName), nil
}

// NewWithDB wraps an existing connection pool; used by tests.
func NewWithDB(db *sql.DB, tableName string) *Store {
	return &Store{db: db, table: tableName}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Name() string { return s.table }

func (s *Store) Rows(ctx context.Context) ([]table.Row, error) {
	q := fmt.Sprintf(`select no, tanggal, aplikasi, jenis, laba from %s order by pos`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	var out []table.Row
	for rows.Next() {
		cells := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		named := make(map[string]string, len(columns))
		for i, col := range columns {
			named[col.sheet] = cells[i]
		}
		out = append(out, table.Row{Index: len(out), Named: named, Cells: cells})
	}
	return out, rows.Err()
}

func (s *Store) Append(ctx context.Context, named map[string]string) error {
	q := fmt.Sprintf(`insert into %s(no, tanggal, aplikasi, jenis, laba) values($1,$2,$3,$4,$5)`, s.table)
	args := make([]any, len(columns))
	for i, col := range columns {
		args[i] = named[col.sheet]
	}
	_, err := s.db.ExecContext(ctx, q, args...)
	return s.wrap(err)
}

func (s *Store) Update(ctx context.Context, index int, column, value string) error {
	sqlCol := ""
	for _, col := range columns {
		if col.sheet == column {
			sqlCol = col.sql
			break
		}
	}
	if sqlCol == "" {
		return fmt.Errorf("unknown column %q", column)
	}
	q := fmt.Sprintf(`update %s set %s=$1 where pos = (select pos from %s order by pos offset $2 limit 1)`,
		s.table, sqlCol, s.table)
	res, err := s.db.ExecContext(ctx, q, value, index)
	if err != nil {
		return s.wrap(err)
	}
	return affectedOne(res, index)
}

func (s *Store) Delete(ctx context.Context, index int) error {
	q := fmt.Sprintf(`delete from %s where pos = (select pos from %s order by pos offset $1 limit 1)`,
		s.table, s.table)
	res, err := s.db.ExecContext(ctx, q, index)
	if err != nil {
		return s.wrap(err)
	}
	return affectedOne(res, index)
}

func affectedOne(res sql.Result, index int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("row %d out of range", index)
	}
	return nil
}

// wrap converts an undefined-relation error into table.ErrNotFound so the
// command layer can report a missing table verbatim.
func (s *Store) wrap(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return fmt.Errorf("%w: %s", table.ErrNotFound, s.table)
	}
	return err
}
