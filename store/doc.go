// Package store defines the adapter contract between the data-access layer
// and its backing stores, plus the typed errors adapters normalize driver
// failures into.
//
// The layer is storage-agnostic: the connection pool, retry executor, and
// error classifier only see the Store, TransactionalStore, and VectorSearcher
// interfaces. Concrete adapters live in the subpackages:
//
//   - store/postgres: JSONB document store on pgx/sqlx
//   - store/redisvec: vector store on Redis with RediSearch KNN queries
package store
