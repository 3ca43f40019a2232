package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgConn is the subset of *pgxpool.Pool the Postgres backend uses.
type PgConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PgBackend stores each collection as one JSONB row of record_collections.
type PgBackend struct {
	conn PgConn
}

func NewPgBackend(conn PgConn) *PgBackend {
	if conn == nil {
		panic("store: postgres connection required")
	}
	return &PgBackend{conn: conn}
}

func (b *PgBackend) Get(ctx context.Context, name string) ([]byte, error) {
	var records string
	err := b.conn.QueryRow(ctx, `
		SELECT records::text
		FROM record_collections
		WHERE name = $1
	`, name).Scan(&records)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("select collection %s: %w", name, err)
	}
	return []byte(records), nil
}

func (b *PgBackend) Put(ctx context.Context, name string, data []byte) error {
	_, err := b.conn.Exec(ctx, `
		INSERT INTO record_collections (name, records, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET records = EXCLUDED.records,
		    updated_at = now()
	`, name, string(data))
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", name, err)
	}
	return nil
}

func (b *PgBackend) Ping(ctx context.Context) error { return b.conn.Ping(ctx) }

func (b *PgBackend) Name() string { return "postgres" }
