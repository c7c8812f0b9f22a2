package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencourts/casesearch/internal/config"
	"github.com/opencourts/casesearch/internal/normalize"
	"github.com/opencourts/casesearch/internal/schema"
)

// Connect builds a pgx connection pool from configuration.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// Store persists raw documents and canonical rows over a pgx pool or a
// single acquired connection.
type Store struct {
	db DB
}

// New wraps a pool or connection in a Store.
func New(db DB) *Store {
	return &Store{db: db}
}

// Has reports whether a raw document with the given case identifier exists.
// A failed lookup is retried once before the error is surfaced.
func (s *Store) Has(ctx context.Context, caseID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM rawcases WHERE case_id = $1)`
	var exists bool
	err := s.db.QueryRow(ctx, query, caseID).Scan(&exists)
	if err != nil {
		if err = s.db.QueryRow(ctx, query, caseID).Scan(&exists); err != nil {
			return false, fmt.Errorf("rawcases lookup for %s: %w", caseID, err)
		}
	}
	return exists, nil
}

// Put inserts a raw document. The conflict clause makes existence-check plus
// insert effectively atomic: a concurrent fetch for the same case identifier
// cannot produce a second row. A failed insert is retried once.
func (s *Store) Put(ctx context.Context, doc RawDocument) error {
	const query = `
INSERT INTO rawcases (case_id, html, fetched_at)
VALUES ($1, $2, $3)
ON CONFLICT (case_id) DO NOTHING`
	_, err := s.db.Exec(ctx, query, doc.CaseID, doc.Content, doc.FetchedAt)
	if err != nil {
		if _, err = s.db.Exec(ctx, query, doc.CaseID, doc.Content, doc.FetchedAt); err != nil {
			return fmt.Errorf("insert rawcases row for %s: %w", doc.CaseID, err)
		}
	}
	return nil
}

// Delete removes a raw document.
func (s *Store) Delete(ctx context.Context, caseID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM rawcases WHERE case_id = $1`, caseID); err != nil {
		return fmt.Errorf("delete rawcases row for %s: %w", caseID, err)
	}
	return nil
}

// SelectUnparsed returns one window of raw documents whose case identifier
// has no cases row yet. The left-anti-join is what makes reprocessing an
// already-ingested case impossible.
func (s *Store) SelectUnparsed(ctx context.Context, limit, offset int) ([]RawDocument, error) {
	const query = `
SELECT rawcases.case_id, rawcases.html
FROM rawcases
LEFT OUTER JOIN cases ON rawcases.case_id = cases.case_id
WHERE cases.case_id IS NULL
LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select unparsed rawcases: %w", err)
	}
	defer rows.Close()

	var docs []RawDocument
	for rows.Next() {
		var doc RawDocument
		if err := rows.Scan(&doc.CaseID, &doc.Content); err != nil {
			return nil, fmt.Errorf("scan rawcases row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rawcases rows: %w", err)
	}
	return docs, nil
}

// InsertCase writes every populated table of a parsed case in one
// transaction, cases first. A uniqueness conflict on any table rolls the
// whole document back and returns ErrDuplicate.
func (s *Store) InsertCase(ctx context.Context, pc *normalize.ParsedCase) error {
	caseID := pc.CaseID()
	if caseID == "" {
		return fmt.Errorf("parsed case has no case identifier")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin case transaction: %w", err)
	}

	if err := insertTable(ctx, tx, "cases", caseID, pc.Tables["cases"]); err != nil {
		return rollbackWith(ctx, tx, err)
	}
	for _, table := range pc.Order {
		if table == "cases" {
			continue
		}
		if err := insertTable(ctx, tx, table, caseID, pc.Tables[table]); err != nil {
			return rollbackWith(ctx, tx, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit case %s: %w", caseID, err)
	}
	return nil
}

func rollbackWith(ctx context.Context, tx pgx.Tx, err error) error {
	_ = tx.Rollback(ctx)
	return err
}

// insertTable issues one multi-row insert for a table's records, injecting
// the case identifier as the first column of every row.
func insertTable(ctx context.Context, tx pgx.Tx, table, caseID string, records []normalize.Record) error {
	if len(records) == 0 {
		return nil
	}
	columns, ok := schema.TableColumns[table]
	if !ok {
		return fmt.Errorf("no columns registered for table %s", table)
	}

	var (
		placeholders []string
		args         []any
	)
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			if col == "case_id" {
				args = append(args, caseID)
			} else {
				args = append(args, sqlValue(rec[col]))
			}
			row[i] = fmt.Sprintf("$%d", len(args))
		}
		placeholders = append(placeholders, "("+strings.Join(row, ", ")+")")
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s rows for %s: %w", table, caseID, err)
	}
	return nil
}

// sqlValue maps parsed values onto SQL parameters. Empty, false, and zero
// values all insert as NULL.
func sqlValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return x
	case bool:
		if !x {
			return nil
		}
		return x
	case int:
		if x == 0 {
			return nil
		}
		return x
	}
	return v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
