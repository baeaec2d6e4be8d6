package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSchemaMissing reports that the kv_entries table has not been migrated.
var ErrSchemaMissing = errors.New("kv_entries table missing; run migrations")

// Postgres stores values in the kv_entries table, one row per namespace and key.
type Postgres struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgres returns a Postgres-backed implementation.
func NewPostgres(pool *pgxpool.Pool, namespace string) *Postgres {
	return &Postgres{pool: pool, namespace: namespace}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	const query = `
        SELECT value FROM kv_entries
        WHERE namespace=$1 AND key=$2`

	var value string
	if err := p.pool.QueryRow(ctx, query, p.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", wrapPgError("select kv entry", err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO kv_entries (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	if _, err := p.pool.Exec(ctx, query, p.namespace, key, value); err != nil {
		return wrapPgError("upsert kv entry", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	const query = `
        DELETE FROM kv_entries
        WHERE namespace=$1 AND key = ANY($2)`

	if _, err := p.pool.Exec(ctx, query, p.namespace, keys); err != nil {
		return wrapPgError("delete kv entries", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func wrapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%s: %w: %w", op, ErrSchemaMissing, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
