// Package resilience provides the retry, circuit breaking, timeout, and
// bulkhead primitives used by the data-access layer.
//
// The patterns are small, composable state machines guarded by mutexes and
// can be stacked in any combination:
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: 30 * time.Second,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    Backoff: resilience.BackoffConfig{
//	        InitialDelay: 100 * time.Millisecond,
//	        MaxDelay:     30 * time.Second,
//	        Multiplier:   2.0,
//	        Jitter:       true,
//	    },
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return store.HealthCheck(ctx)
//	})
//
// Retries are strictly sequential; the delay between attempts follows the
// exponential backoff policy in Delay. The circuit breaker wraps the whole
// retry loop, so an external call counts as a single outcome regardless of
// how many attempts it took.
package resilience
