package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zoernert/rhajaina-dal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	id         text NOT NULL,
	data       jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING gin (data);
`

// EnsureSchema creates the documents table and its index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return mapError(err)
	}
	return nil
}

// querier abstracts over the pool and an open transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// q returns the transaction bound to ctx when inside WithTransaction,
// otherwise the pool.
func (s *Store) q(ctx context.Context) (querier, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx, nil
	}
	return s.conn()
}

// Insert stores a new document. A duplicate id yields a
// *store.DuplicateKeyError.
func (s *Store) Insert(ctx context.Context, collection, id string, doc store.Document) error {
	q, err := s.q(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("postgres: marshal document: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, data)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Upsert stores a document, replacing an existing one with the same id.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc store.Document) error {
	q, err := s.q(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("postgres: marshal document: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, data)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Get fetches one document by id. Missing documents yield store.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	q, err := s.q(ctx)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = q.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}

	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal document: %w", err)
	}
	return doc, nil
}

// Find returns documents in collection whose data contains filter, using the
// JSONB containment operator. A nil filter returns the whole collection up
// to limit.
func (s *Store) Find(ctx context.Context, collection string, filter store.Document, limit int) ([]store.Document, error) {
	q, err := s.q(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	if filter == nil {
		rows, err = q.QueryContext(ctx,
			`SELECT data FROM documents WHERE collection = $1 ORDER BY created_at LIMIT $2`,
			collection, limit)
	} else {
		var filterData []byte
		filterData, err = json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("postgres: marshal filter: %w", err)
		}
		rows, err = q.QueryContext(ctx,
			`SELECT data FROM documents WHERE collection = $1 AND data @> $2 ORDER BY created_at LIMIT $3`,
			collection, filterData, limit)
	}
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, mapError(err)
		}
		var doc store.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return docs, nil
}

// Delete removes one document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	q, err := s.q(ctx)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return mapError(err)
	}
	return nil
}
