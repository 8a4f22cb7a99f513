package discovery

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProber_MarksInstancesByProbeResult(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	sick := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer sick.Close()

	r := testRegistry(t, RegistryConfig{})

	goodID, err := r.Register("billing", hostPort(healthy.URL), nil)
	require.NoError(t, err)
	sickID, err := r.Register("billing", hostPort(sick.URL), nil)
	require.NoError(t, err)
	deadID, err := r.Register("billing", "127.0.0.1:1", nil)
	require.NoError(t, err)

	p := NewProber(r, ProberConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  200 * time.Millisecond,
	})
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.Discover("billing")) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	instances := r.Discover("billing")
	require.Len(t, instances, 1)
	assert.Equal(t, goodID, instances[0].ID)
	_ = sickID
	_ = deadID
}

func TestProber_StopIsIdempotent(t *testing.T) {
	r := testRegistry(t, RegistryConfig{})
	p := NewProber(r, ProberConfig{Interval: time.Hour})
	p.Start()
	p.Stop()
	p.Stop()
}

func hostPort(url string) string {
	return strings.TrimPrefix(url, "http://")
}
