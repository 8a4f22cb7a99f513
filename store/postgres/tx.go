package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// txFromContext returns the transaction bound by WithTransaction, or nil.
func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

// WithTransaction runs fn inside a transaction scope. Store operations called
// with the derived context execute on the transaction. Any error from fn
// aborts the transaction; the underlying session is released on every exit
// path, including panics.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", mapError(err))
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit transaction: %w", mapError(err))
	}
	committed = true
	return nil
}
