// Package health provides health checking for the backing stores and
// discovered service instances.
//
// A Checker answers a single question: is this component functional right
// now. StoreChecker adapts any store adapter; the Aggregator fans out over
// all registered checkers in parallel and reduces results to an overall
// status, which the HTTP handlers expose as liveness/readiness/detail
// endpoints.
package health
