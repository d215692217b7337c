package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

type sqliteQuerier struct{ db *sql.DB }

// OpenSQLite opens the snapshot database at path. ":memory:" gives a
// private in-memory database, limited to one connection so that every query
// sees the same data.
func OpenSQLite(path string) (Querier, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return &sqliteQuerier{db: db}, nil
}

// Exec runs a statement against a sqlite querier. It exists for seeding
// snapshot files; the service itself never writes.
func Exec(ctx context.Context, q Querier, stmt string, args ...any) error {
	s, ok := q.(*sqliteQuerier)
	if !ok {
		return fmt.Errorf("exec not supported on %s", q.Dialect())
	}
	_, err := s.db.ExecContext(ctx, stmt, args...)
	return err
}

func (q *sqliteQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (q *sqliteQuerier) Ping(ctx context.Context) error { return q.db.PingContext(ctx) }

func (q *sqliteQuerier) Dialect() Dialect { return SQLite }

func (q *sqliteQuerier) Close() { _ = q.db.Close() }

type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }
