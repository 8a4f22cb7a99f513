// Package discovery provides an in-memory service registry with
// heartbeat-based liveness, optional active HTTP health probing, and a
// caching client that load-balances across discovered instances.
package discovery
