package resilience

import (
	"context"
	"testing"
	"time"
)

// BenchmarkCircuitBreaker_Execute_Closed measures the happy path.
func BenchmarkCircuitBreaker_Execute_Closed(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  100,
		ResetTimeout: time.Minute,
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkRetry_Execute_FirstAttemptSuccess measures retry overhead when no
// retries happen.
func BenchmarkRetry_Execute_FirstAttemptSuccess(b *testing.B) {
	retry := NewRetry(RetryConfig{MaxAttempts: 3})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = retry.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkDelay measures the backoff computation itself.
func BenchmarkDelay(b *testing.B) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Delay(i%10+1, cfg)
	}
}

// BenchmarkBulkhead_Execute measures slot accounting overhead.
func BenchmarkBulkhead_Execute(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 100})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bh.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}
