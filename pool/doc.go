// Package pool manages the lifecycle of a set of named stores. It connects
// every store at startup, probes them on a fixed interval, reconnects lost
// connections on demand with bounded retries, and routes each operation
// through a per-store circuit breaker and bulkhead.
package pool
