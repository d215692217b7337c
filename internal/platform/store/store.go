// Package store gives the domain loaders one read-only query surface over
// the supported SQL backends: postgres through pgxpool and an embedded
// sqlite file through modernc.org/sqlite.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the placeholder syntax of a backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Rows is the cursor returned by Query. pgx.Rows satisfies it directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier runs read queries written with ? placeholders.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close()
}

// Rebind rewrites ? placeholders into the dialect's syntax. Question marks
// inside single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// InDatasets returns a "column IN (?, ...)" clause for datasets, or "1=1"
// when no dataset restriction applies.
func InDatasets(column string, datasets []string) (string, []any) {
	if len(datasets) == 0 {
		return "1=1", nil
	}
	args := make([]any, len(datasets))
	marks := make([]string, len(datasets))
	for i, d := range datasets {
		args[i] = d
		marks[i] = "?"
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ", ")), args
}

// Collect drains rows through scan, closing them.
func Collect[T any](rows Rows, scan func(Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
