package resilience

import (
	"context"
	"time"
)

// RetryConfig configures the retry executor.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	// Default: 3
	MaxAttempts int

	// Backoff holds the delay policy between attempts.
	Backoff BackoffConfig

	// RetryIf determines if an error should trigger another attempt.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt with the 1-based index of
	// the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry executes operations with bounded, strictly sequential retries.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry executor.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	config.Backoff = config.Backoff.withDefaults()
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs the operation, retrying on failures RetryIf accepts. A
// non-retryable failure is returned as-is; exhausting MaxAttempts returns an
// *ExhaustedError wrapping the last failure. Sleeps between attempts honor
// context cancellation.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := Delay(attempt, r.config.Backoff)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &ExhaustedError{Attempts: r.config.MaxAttempts, Err: lastErr}
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
