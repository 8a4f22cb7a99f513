package classify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHandle_BuildsSafeError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rawErr := errors.New("dial tcp 10.0.0.5:27017: connection refused by host db-internal")
	safe := Handle(context.Background(), rawErr, HandleContext{
		Operation: "find",
		Resource:  "documents",
		RequestID: "req-1",
	}, logger, nil)

	if safe.ID == "" {
		t.Error("ID is empty, want generated error id")
	}
	if safe.Code != CodeConnectionFailed {
		t.Errorf("Code = %q, want %q", safe.Code, CodeConnectionFailed)
	}
	if !safe.Retryable {
		t.Error("Retryable = false, want true")
	}
	if safe.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}

	// Raw driver internals never leak into the safe surface.
	if strings.Contains(safe.Message, "10.0.0.5") || strings.Contains(safe.Error(), "db-internal") {
		t.Errorf("safe error leaks raw details: %q", safe.Error())
	}

	// Full detail goes to the internal log stream.
	if !strings.Contains(buf.String(), "db-internal") {
		t.Error("internal log missing raw error detail")
	}
	if !strings.Contains(buf.String(), safe.ID) {
		t.Error("internal log missing error id")
	}
}

func TestHandle_CriticalAlertsSideChannel(t *testing.T) {
	var alerted []SafeError
	alerter := AlerterFunc(func(ctx context.Context, safe SafeError) {
		alerted = append(alerted, safe)
	})

	Handle(context.Background(), errors.New("authentication failed"), HandleContext{}, nil, alerter)
	if len(alerted) != 1 {
		t.Fatalf("alerts = %d, want 1 for critical severity", len(alerted))
	}
	if alerted[0].Severity != "critical" {
		t.Errorf("alert severity = %q, want critical", alerted[0].Severity)
	}

	alerted = nil
	Handle(context.Background(), context.DeadlineExceeded, HandleContext{}, nil, alerter)
	if len(alerted) != 0 {
		t.Errorf("alerts = %d, want 0 for medium severity", len(alerted))
	}
}

func TestHandle_UniqueErrorIDs(t *testing.T) {
	err := errors.New("boom")
	a := Handle(context.Background(), err, HandleContext{}, nil, nil)
	b := Handle(context.Background(), err, HandleContext{}, nil, nil)

	if a.ID == b.ID {
		t.Errorf("error ids collide: %q", a.ID)
	}
}
