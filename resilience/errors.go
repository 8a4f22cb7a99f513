package resilience

import (
	"errors"
	"fmt"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRetriesExhausted is returned when retry attempts are exhausted.
	ErrRetriesExhausted = errors.New("resilience: retries exhausted")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// ExhaustedError reports that all retry attempts failed. It wraps the last
// error observed and matches ErrRetriesExhausted via errors.Is.
type ExhaustedError struct {
	// Attempts is the total number of attempts made.
	Attempts int

	// Err is the error from the last attempt.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resilience: %d attempts exhausted: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRetriesExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}
