// Package operation wraps single store calls with structured telemetry, a
// timeout race, failure classification, and optional bounded retries.
//
// Execute runs one call: a start event is logged, the call races a
// per-operation deadline, and the outcome becomes either a Result envelope
// with duration metadata or a *classify.SafeError with the raw failure
// confined to the internal log stream. ExecuteWithRetry layers the retry
// executor on top, consulting the classifier's retryable flag before each
// extra attempt.
//
// The logger emits operation_start, operation_success, operation_slow,
// operation_failure, and operation_retry events. Inputs pass through
// Sanitize, which redacts sensitive field names and truncates long strings,
// recursively through nested values.
package operation
