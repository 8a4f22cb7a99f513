package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second})

	agg.Register(NewCheckerFunc("up", func(ctx context.Context) Result {
		return Healthy("fine")
	}))
	agg.Register(NewCheckerFunc("down", func(ctx context.Context) Result {
		return Unhealthy("broken", errors.New("ping failed"))
	}))

	results := agg.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results["up"].Status != StatusHealthy {
		t.Errorf("up status = %v, want healthy", results["up"].Status)
	}
	if results["down"].Status != StatusUnhealthy {
		t.Errorf("down status = %v, want unhealthy", results["down"].Status)
	}
	if got := agg.OverallStatus(results); got != StatusUnhealthy {
		t.Errorf("OverallStatus = %v, want unhealthy", got)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})

	_, err := agg.Check(context.Background(), "missing")
	if err != ErrCheckerNotFound {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_SlowCheckerTimesOut(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})

	agg.Register(NewCheckerFunc("stuck", func(ctx context.Context) Result {
		select {
		case <-time.After(time.Second):
			return Healthy("late")
		case <-ctx.Done():
			return Unhealthy("canceled", ctx.Err())
		}
	}))

	results := agg.CheckAll(context.Background())
	if results["stuck"].Status != StatusUnhealthy {
		t.Errorf("stuck status = %v, want unhealthy", results["stuck"].Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second})
	agg.Register(NewCheckerFunc("store", func(ctx context.Context) Result {
		return Healthy("ok")
	}))

	rr := httptest.NewRecorder()
	ReadinessHandler(agg)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}

	agg.Register(NewCheckerFunc("broken", func(ctx context.Context) Result {
		return Unhealthy("down", errors.New("refused"))
	}))

	rr = httptest.NewRecorder()
	ReadinessHandler(agg)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second})
	agg.Register(NewCheckerFunc("postgres", func(ctx context.Context) Result {
		return Healthy("reachable")
	}))

	rr := httptest.NewRecorder()
	DetailedHandler(agg)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "postgres") {
		t.Errorf("body missing check name: %s", rr.Body.String())
	}
}
