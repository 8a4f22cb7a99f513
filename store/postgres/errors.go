package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zoernert/rhajaina-dal/store"
)

// PostgreSQL error codes the adapter normalizes into typed store errors.
const (
	codeUniqueViolation     = "23505"
	codeSerializationFail   = "40001"
	codeDeadlockDetected    = "40P01"
	codeStatementTimeout    = "57014"
	codeTooManyConnections  = "53300"
	codeInvalidPassword     = "28P01"
	codeInvalidAuthz        = "28000"
	codeUndefinedTable      = "42P01"
	codeUndefinedObject     = "42704"
	codeTransactionRollback = "40000"
)

// mapError translates driver failures into the typed errors the classifier
// matches on. Unrecognized errors pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return &store.DuplicateKeyError{
			Collection: pgErr.TableName,
			Key:        pgErr.ConstraintName,
			Err:        err,
		}
	case codeSerializationFail, codeDeadlockDetected:
		return &store.ConflictError{Collection: pgErr.TableName, Err: err}
	case codeStatementTimeout:
		return fmt.Errorf("postgres: statement timeout: %w", err)
	case codeTooManyConnections:
		return fmt.Errorf("%w: %v", store.ErrPoolExhausted, err)
	case codeInvalidPassword, codeInvalidAuthz:
		return fmt.Errorf("postgres: authentication failed: %w", err)
	case codeUndefinedTable, codeUndefinedObject:
		return fmt.Errorf("postgres: schema or index missing: %w", err)
	case codeTransactionRollback:
		return fmt.Errorf("postgres: transaction aborted: %w", err)
	default:
		return err
	}
}
