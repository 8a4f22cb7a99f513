package pool

import "errors"

var (
	// ErrUnknownStore means no store with the requested name is managed by
	// the pool.
	ErrUnknownStore = errors.New("pool: unknown store")

	// ErrNotTransactional means the requested store does not support
	// transactions.
	ErrNotTransactional = errors.New("pool: store does not support transactions")
)
