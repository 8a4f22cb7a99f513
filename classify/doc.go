// Package classify normalizes raw store failures into a fixed taxonomy of
// classification codes with severity, category, and retry eligibility.
//
// Classification is an ordered rule table evaluated top to bottom over the
// error chain and the lowercased message; the first matching rule wins, and
// anything unmatched falls back to UNKNOWN (high severity, not retryable).
// Specific signals are ordered ahead of generic ones, so a refused
// connection classifies as CONNECTION_FAILED rather than the broader
// NETWORK_ERROR.
//
// Handle wraps Classify with an opaque error id, an internal structured log
// of the full failure, a critical-severity alert side channel, and a
// redacted SafeError suitable for returning to callers.
package classify
