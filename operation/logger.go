package operation

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/lmittmann/tint"

	"github.com/zoernert/rhajaina-dal/classify"
)

// DefaultSlowThreshold is the duration above which a success is also logged
// as a slow-operation warning.
const DefaultSlowThreshold = time.Second

// Logger emits structured operation telemetry: start, success, failure,
// slow-operation, and retry-attempt events keyed by operation, resource, and
// request id. All inputs pass through Sanitize before emission.
type Logger struct {
	log  *slog.Logger
	slow time.Duration
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithSlog sets a custom slog backend.
func WithSlog(l *slog.Logger) LoggerOption {
	return func(lg *Logger) {
		lg.log = l
	}
}

// WithSlowThreshold overrides DefaultSlowThreshold.
func WithSlowThreshold(d time.Duration) LoggerOption {
	return func(lg *Logger) {
		lg.slow = d
	}
}

// WithTextOutput emits human-readable colorized output instead of JSON.
func WithTextOutput(w io.Writer, level slog.Level) LoggerOption {
	return func(lg *Logger) {
		lg.log = slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		}))
	}
}

// NewLogger creates an operation logger. The default backend writes JSON to
// stderr at info level.
func NewLogger(opts ...LoggerOption) *Logger {
	lg := &Logger{
		log:  slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		slow: DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(lg)
	}
	if lg.slow <= 0 {
		lg.slow = DefaultSlowThreshold
	}
	return lg
}

// Slog exposes the backend for components that log outside the operation
// event vocabulary.
func (lg *Logger) Slog() *slog.Logger {
	return lg.log
}

func (lg *Logger) base(opctx Context) []any {
	return []any{
		slog.String("operation", opctx.Operation),
		slog.String("resource", opctx.Resource),
		slog.String("request_id", opctx.RequestID),
	}
}

// Start records the beginning of an operation with a heap snapshot and the
// sanitized inputs.
func (lg *Logger) Start(ctx context.Context, opctx Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	attrs := append(lg.base(opctx),
		slog.String("event", "operation_start"),
		slog.Uint64("heap_bytes", mem.HeapAlloc),
	)
	if len(opctx.Metadata) > 0 {
		attrs = append(attrs, slog.Any("inputs", Sanitize(opctx.Metadata)))
	}
	lg.log.InfoContext(ctx, "operation started", attrs...)
}

// Success records a completed operation, warning additionally when the
// duration exceeds the slow threshold.
func (lg *Logger) Success(ctx context.Context, opctx Context, duration time.Duration) {
	attrs := append(lg.base(opctx),
		slog.String("event", "operation_success"),
		slog.Duration("duration", duration),
	)
	lg.log.InfoContext(ctx, "operation succeeded", attrs...)

	if duration > lg.slow {
		slowAttrs := append(lg.base(opctx),
			slog.String("event", "operation_slow"),
			slog.Duration("duration", duration),
			slog.Duration("threshold", lg.slow),
		)
		lg.log.WarnContext(ctx, "slow operation", slowAttrs...)
	}
}

// Failure records a classified failure with sanitized inputs. The raw error
// is confined to this internal stream; safe carries the redacted surface.
func (lg *Logger) Failure(ctx context.Context, opctx Context, duration time.Duration, safe *classify.SafeError, err error) {
	class := safe.Classification()
	attrs := append(lg.base(opctx),
		slog.String("event", "operation_failure"),
		slog.Duration("duration", duration),
		slog.String("error_id", safe.ID),
		slog.String("code", class.Code),
		slog.String("severity", class.Severity.String()),
		slog.String("category", class.Category),
		slog.Bool("retryable", class.Retryable),
		slog.String("error", err.Error()),
	)
	if len(opctx.Metadata) > 0 {
		attrs = append(attrs, slog.Any("inputs", Sanitize(opctx.Metadata)))
	}
	lg.log.ErrorContext(ctx, "operation failed", attrs...)
}

// Retry records one retry attempt.
func (lg *Logger) Retry(ctx context.Context, opctx Context, attempt, maxAttempts int, err error) {
	attrs := append(lg.base(opctx),
		slog.String("event", "operation_retry"),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", maxAttempts),
		slog.String("error", err.Error()),
	)
	lg.log.WarnContext(ctx, "retrying operation", attrs...)
}
