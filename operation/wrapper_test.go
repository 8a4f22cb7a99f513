package operation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/zoernert/rhajaina-dal/classify"
	"github.com/zoernert/rhajaina-dal/resilience"
)

// capturedEvents decodes the JSON log lines written during a test and counts
// events by kind.
func capturedEvents(t *testing.T, buf *bytes.Buffer) map[string]int {
	t.Helper()

	counts := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if event, ok := entry["event"].(string); ok {
			counts[event]++
		}
	}
	return counts
}

func testWrapper(buf *bytes.Buffer) *Wrapper {
	logger := NewLogger(WithSlog(slog.New(slog.NewJSONHandler(buf, nil))))
	return NewWrapper(
		WithLogger(logger),
		WithBackoff(resilience.BackoffConfig{InitialDelay: time.Millisecond}),
	)
}

func TestExecute_Success(t *testing.T) {
	var buf bytes.Buffer
	w := testWrapper(&buf)

	res, err := Execute(context.Background(), w, NewContext("documents.get", "postgres"),
		func(ctx context.Context) (string, error) {
			return "doc-1", nil
		})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Data != "doc-1" {
		t.Errorf("Data = %q, want doc-1", res.Data)
	}
	if res.Metadata.Operation != "documents.get" {
		t.Errorf("Metadata.Operation = %q, want documents.get", res.Metadata.Operation)
	}
	if res.Metadata.Resource != "postgres" {
		t.Errorf("Metadata.Resource = %q, want postgres", res.Metadata.Resource)
	}
	if res.Metadata.Timestamp.IsZero() {
		t.Error("Metadata.Timestamp is zero")
	}

	events := capturedEvents(t, &buf)
	if events["operation_start"] != 1 || events["operation_success"] != 1 {
		t.Errorf("events = %v, want 1 start + 1 success", events)
	}
}

func TestExecute_FailureReturnsSafeError(t *testing.T) {
	var buf bytes.Buffer
	w := testWrapper(&buf)

	rawErr := errors.New("read tcp: connection reset by peer at 10.1.2.3")
	_, err := Execute(context.Background(), w, NewContext("documents.find", "postgres"),
		func(ctx context.Context) (string, error) {
			return "", rawErr
		})

	var safe *classify.SafeError
	if !errors.As(err, &safe) {
		t.Fatalf("error = %T, want *classify.SafeError", err)
	}
	if strings.Contains(safe.Error(), "10.1.2.3") {
		t.Errorf("safe error leaks raw details: %q", safe.Error())
	}

	events := capturedEvents(t, &buf)
	if events["operation_failure"] != 1 {
		t.Errorf("events = %v, want 1 failure", events)
	}
}

func TestExecute_TimeoutWithinBound(t *testing.T) {
	var buf bytes.Buffer
	w := testWrapper(&buf)

	opctx := NewContext("documents.scan", "postgres")
	opctx.Timeout = 30 * time.Millisecond

	start := time.Now()
	_, err := Execute(context.Background(), w, opctx,
		func(ctx context.Context) (string, error) {
			select {
			case <-time.After(time.Second):
				return "late", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		})
	elapsed := time.Since(start)

	var safe *classify.SafeError
	if !errors.As(err, &safe) {
		t.Fatalf("error = %T, want *classify.SafeError", err)
	}
	if safe.Code != classify.CodeTimeout {
		t.Errorf("Code = %q, want %q", safe.Code, classify.CodeTimeout)
	}
	if elapsed > 300*time.Millisecond {
		t.Errorf("Execute() returned after %v, want close to the 30ms timeout", elapsed)
	}
}

func TestExecuteWithRetry_EventualSuccess(t *testing.T) {
	var buf bytes.Buffer
	w := testWrapper(&buf)

	attempts := 0
	res, err := ExecuteWithRetry(context.Background(), w, NewContext("vectors.search", "redis"),
		func(ctx context.Context) (int, error) {
			attempts++
			if attempts < 3 {
				return 0, syscall.ECONNRESET
			}
			return 7, nil
		}, 3)

	if err != nil {
		t.Fatalf("ExecuteWithRetry() error = %v", err)
	}
	if res.Data != 7 {
		t.Errorf("Data = %d, want 7", res.Data)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	events := capturedEvents(t, &buf)
	if events["operation_retry"] != 2 {
		t.Errorf("retry events = %d, want 2", events["operation_retry"])
	}
	if events["operation_success"] != 1 {
		t.Errorf("success events = %d, want 1", events["operation_success"])
	}
}

func TestExecuteWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	var buf bytes.Buffer
	w := testWrapper(&buf)

	attempts := 0
	_, err := ExecuteWithRetry(context.Background(), w, NewContext("documents.insert", "postgres"),
		func(ctx context.Context) (int, error) {
			attempts++
			return 0, errors.New("duplicate key value violates unique constraint")
		}, 5)

	var safe *classify.SafeError
	if !errors.As(err, &safe) {
		t.Fatalf("error = %T, want *classify.SafeError", err)
	}
	if safe.Code != classify.CodeDuplicateKey {
		t.Errorf("Code = %q, want %q", safe.Code, classify.CodeDuplicateKey)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}

	events := capturedEvents(t, &buf)
	if events["operation_retry"] != 0 {
		t.Errorf("retry events = %d, want 0", events["operation_retry"])
	}
}

func TestExecuteWithRetry_Exhaustion(t *testing.T) {
	var buf bytes.Buffer
	w := testWrapper(&buf)

	attempts := 0
	_, err := ExecuteWithRetry(context.Background(), w, NewContext("documents.find", "postgres"),
		func(ctx context.Context) (int, error) {
			attempts++
			return 0, syscall.ECONNRESET
		}, 3)

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	var safe *classify.SafeError
	if !errors.As(err, &safe) {
		t.Fatalf("error = %T, want *classify.SafeError", err)
	}
	// Exhaustion classifies as the underlying cause.
	if safe.Code != classify.CodeNetworkError {
		t.Errorf("Code = %q, want %q", safe.Code, classify.CodeNetworkError)
	}
}

func TestLogger_SlowOperationWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(
		WithSlog(slog.New(slog.NewJSONHandler(&buf, nil))),
		WithSlowThreshold(time.Millisecond),
	)
	w := NewWrapper(WithLogger(logger))

	_, err := Execute(context.Background(), w, NewContext("documents.scan", "postgres"),
		func(ctx context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	events := capturedEvents(t, &buf)
	if events["operation_slow"] != 1 {
		t.Errorf("slow events = %d, want 1", events["operation_slow"])
	}
}
