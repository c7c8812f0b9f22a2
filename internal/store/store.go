// Package store provides Postgres-backed persistence for raw documents and
// the canonical case schema.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RawDocument is one fetched detail page, keyed by case identifier.
type RawDocument struct {
	CaseID    string
	Content   []byte
	FetchedAt time.Time
}

// ErrDuplicate indicates a uniqueness conflict on insert: some other path
// already ingested this case.
var ErrDuplicate = errors.New("case already ingested")

// RawStore is the keyed persistence for unparsed fetched documents. It
// doubles as the crawl dedup index and as the ingestion work queue.
type RawStore interface {
	Has(ctx context.Context, caseID string) (bool, error)
	Put(ctx context.Context, doc RawDocument) error
	Delete(ctx context.Context, caseID string) error
}

// DB is the subset of pgx pool/connection behavior the store needs. It is
// satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}
