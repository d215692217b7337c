package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgQuerier struct{ pool *pgxpool.Pool }

// NewPostgres wraps a pool created by db.NewPool.
func NewPostgres(pool *pgxpool.Pool) Querier {
	return &pgQuerier{pool: pool}
}

func (q *pgQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.pool.Query(ctx, Rebind(Postgres, query), args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (q *pgQuerier) Ping(ctx context.Context) error { return q.pool.Ping(ctx) }

func (q *pgQuerier) Dialect() Dialect { return Postgres }

func (q *pgQuerier) Close() { q.pool.Close() }
