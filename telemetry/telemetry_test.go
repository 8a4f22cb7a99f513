package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Prometheus(t *testing.T) {
	p, err := New(Config{ServiceName: "dal-test", Exporter: ExporterPrometheus})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	meter := p.Meter("dal-test")
	counter, err := meter.Int64Counter("test_operations_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	handler := p.Handler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_operations_total")
}

func TestNew_None(t *testing.T) {
	p, err := New(Config{Exporter: ExporterNone})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	assert.Nil(t, p.Handler())

	// Instruments still work, they just record nowhere.
	counter, err := p.Meter("dal-test").Int64Counter("noop_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}

func TestNew_UnknownExporter(t *testing.T) {
	_, err := New(Config{Exporter: "statsd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statsd")
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, "rhajaina-dal", cfg.ServiceName)
	assert.Equal(t, ExporterPrometheus, cfg.Exporter)
}
