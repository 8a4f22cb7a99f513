package operation

import (
	"context"
	"time"

	"github.com/zoernert/rhajaina-dal/classify"
	"github.com/zoernert/rhajaina-dal/resilience"
)

// Wrapper orchestrates logging, the timeout race, classification, and
// optional retries around single store calls.
type Wrapper struct {
	logger  *Logger
	metrics *Metrics
	alerter classify.Alerter
	backoff resilience.BackoffConfig
}

// WrapperOption configures a Wrapper.
type WrapperOption func(*Wrapper)

// WithLogger sets the operation logger.
func WithLogger(l *Logger) WrapperOption {
	return func(w *Wrapper) {
		w.logger = l
	}
}

// WithMetrics sets the operation metrics recorder.
func WithMetrics(m *Metrics) WrapperOption {
	return func(w *Wrapper) {
		w.metrics = m
	}
}

// WithAlerter sets the critical-failure side channel.
func WithAlerter(a classify.Alerter) WrapperOption {
	return func(w *Wrapper) {
		w.alerter = a
	}
}

// WithBackoff sets the delay policy used by ExecuteWithRetry.
func WithBackoff(cfg resilience.BackoffConfig) WrapperOption {
	return func(w *Wrapper) {
		w.backoff = cfg
	}
}

// NewWrapper creates an operation wrapper.
func NewWrapper(opts ...WrapperOption) *Wrapper {
	w := &Wrapper{}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = NewLogger()
	}
	return w
}

// outcome carries the result of the racing goroutine through a buffered
// channel; a late completion after timeout lands in the buffer and is
// discarded with it.
type outcome[T any] struct {
	val T
	err error
}

// race runs op against the timeout. The deadline also cancels the
// operation's context, but a driver call that ignores cancellation is simply
// abandoned.
func race[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := op(opCtx)
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-opCtx.Done():
		var zero T
		if opCtx.Err() == context.DeadlineExceeded {
			return zero, resilience.ErrTimeout
		}
		return zero, opCtx.Err()
	}
}

func (w *Wrapper) handleContext(opctx Context) classify.HandleContext {
	return classify.HandleContext{
		Operation: opctx.Operation,
		Resource:  opctx.Resource,
		RequestID: opctx.RequestID,
	}
}

func succeed[T any](ctx context.Context, w *Wrapper, opctx Context, val T) (Result[T], error) {
	duration := time.Since(opctx.StartTime)
	w.logger.Success(ctx, opctx, duration)
	w.metrics.Record(ctx, opctx, duration, nil)

	return Result[T]{
		Data: val,
		Metadata: Metadata{
			Duration:  duration,
			Timestamp: time.Now().UTC(),
			Operation: opctx.Operation,
			Resource:  opctx.Resource,
		},
	}, nil
}

func fail[T any](ctx context.Context, w *Wrapper, opctx Context, err error) (Result[T], error) {
	duration := time.Since(opctx.StartTime)
	safe := classify.Handle(ctx, err, w.handleContext(opctx), nil, w.alerter)
	w.logger.Failure(ctx, opctx, duration, safe, err)
	w.metrics.Record(ctx, opctx, duration, err)

	var zero Result[T]
	return zero, safe
}

// Execute runs op through the full envelope: start log, timeout race,
// classification, and success or failure telemetry. On failure the returned
// error is a *classify.SafeError.
func Execute[T any](ctx context.Context, w *Wrapper, opctx Context, op func(context.Context) (T, error)) (Result[T], error) {
	opctx = opctx.normalized()
	w.logger.Start(ctx, opctx)

	val, err := race(ctx, opctx.Timeout, op)
	if err != nil {
		return fail[T](ctx, w, opctx, err)
	}
	return succeed(ctx, w, opctx, val)
}

// ExecuteWithRetry layers bounded retries over Execute's envelope. Each
// attempt races the timeout individually; another attempt is made only when
// the failure classifies as retryable. A retry-attempt event is logged per
// extra attempt.
func ExecuteWithRetry[T any](ctx context.Context, w *Wrapper, opctx Context, op func(context.Context) (T, error), maxAttempts int) (Result[T], error) {
	opctx = opctx.normalized()
	w.logger.Start(ctx, opctx)

	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: maxAttempts,
		Backoff:     w.backoff,
		RetryIf:     classify.Retryable,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			w.logger.Retry(ctx, opctx, attempt, maxAttempts, err)
			w.metrics.RecordRetry(ctx, opctx)
		},
	})

	var val T
	err := retry.Execute(ctx, func(ctx context.Context) error {
		v, attemptErr := race(ctx, opctx.Timeout, op)
		if attemptErr != nil {
			return attemptErr
		}
		val = v
		return nil
	})
	if err != nil {
		return fail[T](ctx, w, opctx, err)
	}
	return succeed(ctx, w, opctx, val)
}
