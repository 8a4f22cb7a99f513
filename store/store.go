package store

import "context"

// Document is a schemaless record held by a document store.
type Document map[string]any

// SearchResult is a single vector search hit.
type SearchResult struct {
	// ID is the point identifier.
	ID string

	// Score is the similarity score reported by the store.
	Score float64

	// Payload is the metadata stored alongside the vector.
	Payload map[string]any
}

// Store is the narrow contract every backing-store adapter implements.
//
// Contract:
// - Connect establishes the client; callers treat an error as fatal at boot.
// - HealthCheck is a cheap liveness probe, not a reconnect.
// - Disconnect releases the client; it is idempotent.
// - Concurrency: implementations must be safe for concurrent use.
type Store interface {
	// Name returns the configured name of this store.
	Name() string

	// Connect establishes the underlying client connection.
	Connect(ctx context.Context) error

	// Disconnect closes the underlying client connection.
	Disconnect(ctx context.Context) error

	// HealthCheck reports whether the store is reachable and functional.
	HealthCheck(ctx context.Context) error
}

// TransactionalStore is implemented by stores that support multi-statement
// atomicity. The callback runs inside a transaction scope carried on the
// context; any callback error aborts the transaction, and the underlying
// session is released on every exit path.
type TransactionalStore interface {
	Store

	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// VectorSearcher is implemented by stores that support similarity search.
type VectorSearcher interface {
	Store

	// Search returns up to limit nearest neighbors of vector in collection.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]SearchResult, error)
}
