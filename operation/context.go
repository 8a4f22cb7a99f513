package operation

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds an operation when Context.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Context identifies a single store operation for logging, metrics, and
// timeout handling. It is created per call and discarded afterwards.
type Context struct {
	// Operation is the logical operation name, e.g. "documents.insert".
	Operation string

	// Resource is the store or collection the operation targets.
	Resource string

	// RequestID correlates the operation with an inbound request. Generated
	// when empty.
	RequestID string

	// UserID is the acting user, when known.
	UserID string

	// StartTime is when the operation began.
	StartTime time.Time

	// Timeout bounds the operation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Metadata carries extra logging fields; it is sanitized before emission.
	Metadata map[string]any
}

// NewContext creates an operation context with a fresh request id and start
// time.
func NewContext(operation, resource string) Context {
	return Context{
		Operation: operation,
		Resource:  resource,
		RequestID: uuid.NewString(),
		StartTime: time.Now(),
	}
}

// normalized fills generated and defaulted fields.
func (c Context) normalized() Context {
	if c.RequestID == "" {
		c.RequestID = uuid.NewString()
	}
	if c.StartTime.IsZero() {
		c.StartTime = time.Now()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
