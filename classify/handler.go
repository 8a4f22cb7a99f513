package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Alerter is the side channel notified about critical-severity failures.
type Alerter interface {
	Alert(ctx context.Context, safe SafeError)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(ctx context.Context, safe SafeError)

func (f AlerterFunc) Alert(ctx context.Context, safe SafeError) { f(ctx, safe) }

// SafeError is the user-visible failure envelope. It carries only
// classification-derived data; raw driver errors and stack traces stay in
// the internal log stream.
type SafeError struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`

	class Classification
}

func (e *SafeError) Error() string {
	return fmt.Sprintf("%s: %s (error id %s)", e.Code, e.Message, e.ID)
}

// Classification returns the taxonomy entry this error was built from.
func (e *SafeError) Classification() Classification {
	return e.class
}

// User-safe messages per classification code.
var safeMessages = map[string]string{
	CodeNetworkError:      "a network error occurred while reaching the data store",
	CodeTimeout:           "the operation did not complete in time",
	CodeDuplicateKey:      "a record with this key already exists",
	CodeAuthFailed:        "authentication with the data store failed",
	CodeWriteConflict:     "the write conflicted with a concurrent update",
	CodeIndexError:        "a schema or index error occurred",
	CodeTransactionFailed: "the transaction could not be completed",
	CodeConnectionFailed:  "the data store refused the connection",
	CodePoolExhausted:     "no connections are currently available",
	CodeValidationError:   "the request failed validation",
	CodeUnknown:           "an unexpected error occurred",
}

// HandleContext identifies the operation a failure belongs to.
type HandleContext struct {
	Operation string
	Resource  string
	RequestID string
}

// Handle classifies err, logs the full failure internally, fires the alert
// side channel for critical severities, and returns the redacted SafeError
// for the caller.
func Handle(ctx context.Context, err error, hc HandleContext, logger *slog.Logger, alerter Alerter) *SafeError {
	class := Classify(err)

	safe := &SafeError{
		ID:        uuid.NewString(),
		Code:      class.Code,
		Message:   safeMessages[class.Code],
		Severity:  class.Severity.String(),
		Retryable: class.Retryable,
		Timestamp: time.Now().UTC(),
		class:     class,
	}

	if logger != nil {
		logger.ErrorContext(ctx, "operation failed",
			slog.String("error_id", safe.ID),
			slog.String("operation", hc.Operation),
			slog.String("resource", hc.Resource),
			slog.String("request_id", hc.RequestID),
			slog.String("code", class.Code),
			slog.String("severity", class.Severity.String()),
			slog.String("category", class.Category),
			slog.Bool("retryable", class.Retryable),
			slog.String("error", err.Error()),
		)
	}

	if class.Severity == SeverityCritical && alerter != nil {
		alerter.Alert(ctx, *safe)
	}

	return safe
}
