package classify

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/zoernert/rhajaina-dal/resilience"
	"github.com/zoernert/rhajaina-dal/store"
)

// Severity ranks how urgent a classified failure is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Classification codes.
const (
	CodeNetworkError      = "NETWORK_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeDuplicateKey      = "DUPLICATE_KEY"
	CodeAuthFailed        = "AUTH_FAILED"
	CodeWriteConflict     = "WRITE_CONFLICT"
	CodeIndexError        = "INDEX_ERROR"
	CodeTransactionFailed = "TRANSACTION_FAILED"
	CodeConnectionFailed  = "CONNECTION_FAILED"
	CodePoolExhausted     = "POOL_EXHAUSTED"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeUnknown           = "UNKNOWN"
)

// Classification is the taxonomy entry a raw failure normalizes to. It is a
// value type, produced fresh per error and never mutated.
type Classification struct {
	Code      string
	Severity  Severity
	Retryable bool
	Category  string
}

// rule is one row of the ordered classification table. Rules are evaluated
// top to bottom; the first match wins.
type rule struct {
	name  string
	match func(err error, msg string) bool
	class Classification
}

var rules = []rule{
	{
		name: "connection refused",
		match: func(err error, msg string) bool {
			return errors.Is(err, syscall.ECONNREFUSED) ||
				strings.Contains(msg, "connection refused")
		},
		class: Classification{CodeConnectionFailed, SeverityCritical, true, "connection"},
	},
	{
		name: "pool exhausted",
		match: func(err error, msg string) bool {
			// Typed match first; the bare "pool" substring covers drivers
			// that only surface message text.
			return errors.Is(err, store.ErrPoolExhausted) ||
				errors.Is(err, resilience.ErrBulkheadFull) ||
				strings.Contains(msg, "pool")
		},
		class: Classification{CodePoolExhausted, SeverityHigh, true, "pool"},
	},
	{
		name: "timeout",
		match: func(err error, msg string) bool {
			if errors.Is(err, resilience.ErrTimeout) ||
				errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return true
			}
			return strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout")
		},
		class: Classification{CodeTimeout, SeverityMedium, true, "timeout"},
	},
	{
		name: "network",
		match: func(err error, msg string) bool {
			var netErr net.Error
			if errors.As(err, &netErr) {
				return true
			}
			return errors.Is(err, syscall.ECONNRESET) ||
				errors.Is(err, syscall.EPIPE) ||
				errors.Is(err, syscall.EHOSTUNREACH) ||
				errors.Is(err, syscall.ENETUNREACH) ||
				strings.Contains(msg, "broken pipe") ||
				strings.Contains(msg, "network")
		},
		class: Classification{CodeNetworkError, SeverityHigh, true, "network"},
	},
	{
		name: "duplicate key",
		match: func(err error, msg string) bool {
			var dup *store.DuplicateKeyError
			return errors.As(err, &dup) ||
				strings.Contains(msg, "duplicate key") ||
				strings.Contains(msg, "unique constraint")
		},
		class: Classification{CodeDuplicateKey, SeverityLow, false, "validation"},
	},
	{
		name: "authentication",
		match: func(err error, msg string) bool {
			return strings.Contains(msg, "authentication") ||
				strings.Contains(msg, "authorization") ||
				strings.Contains(msg, "unauthorized") ||
				strings.Contains(msg, "permission denied")
		},
		class: Classification{CodeAuthFailed, SeverityCritical, false, "authentication"},
	},
	{
		name: "write conflict",
		match: func(err error, msg string) bool {
			var conflict *store.ConflictError
			return errors.As(err, &conflict) ||
				strings.Contains(msg, "write conflict") ||
				strings.Contains(msg, "serialization failure") ||
				strings.Contains(msg, "could not serialize")
		},
		class: Classification{CodeWriteConflict, SeverityMedium, true, "concurrency"},
	},
	{
		name: "vector dimension",
		match: func(err error, msg string) bool {
			var dim *store.DimensionError
			return errors.As(err, &dim) || strings.Contains(msg, "dimension")
		},
		class: Classification{CodeValidationError, SeverityMedium, false, "validation"},
	},
	{
		name: "index",
		match: func(err error, msg string) bool {
			return strings.Contains(msg, "index")
		},
		class: Classification{CodeIndexError, SeverityHigh, false, "schema"},
	},
	{
		name: "transaction",
		match: func(err error, msg string) bool {
			return strings.Contains(msg, "transaction")
		},
		class: Classification{CodeTransactionFailed, SeverityHigh, true, "transaction"},
	},
}

// unknown is the fallback for errors no rule matches.
var unknown = Classification{CodeUnknown, SeverityHigh, false, "unknown"}

// Classify normalizes a raw failure to exactly one taxonomy entry.
//
// Circuit-open rejections are synthetic fail-fast signals, not store
// failures; callers should check resilience.ErrCircuitOpen before
// classifying.
func Classify(err error) Classification {
	if err == nil {
		return unknown
	}

	// Retry exhaustion classifies as its underlying cause.
	var exhausted *resilience.ExhaustedError
	if errors.As(err, &exhausted) && exhausted.Err != nil {
		err = exhausted.Err
	}

	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		if r.match(err, msg) {
			return r.class
		}
	}
	return unknown
}

// Retryable reports whether the failure is classified as retryable.
func Retryable(err error) bool {
	return Classify(err).Retryable
}
