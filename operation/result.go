package operation

import "time"

// Metadata describes a completed operation.
type Metadata struct {
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Resource  string        `json:"resource"`
}

// Result is the success envelope returned by the operation wrapper.
type Result[T any] struct {
	Data     T        `json:"data"`
	Metadata Metadata `json:"metadata"`
}
