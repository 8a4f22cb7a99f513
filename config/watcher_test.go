package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path string, attempts string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("retry:\n  max_attempts: "+attempts+"\n"), 0o644))
}

func TestWatch_DeliversInitialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dal.yaml")
	writeConfig(t, path, "3")

	var mu sync.Mutex
	var got []int
	w, err := Watch(path, nil, func(cfg Config) {
		mu.Lock()
		got = append(got, cfg.Retry.MaxAttempts)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0])
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dal.yaml")
	writeConfig(t, path, "3")

	var mu sync.Mutex
	var got []int
	w, err := Watch(path, nil, func(cfg Config) {
		mu.Lock()
		got = append(got, cfg.Retry.MaxAttempts)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Stop()

	writeConfig(t, path, "7")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, 7, got[len(got)-1])
}

func TestWatch_KeepsPreviousConfigOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dal.yaml")
	writeConfig(t, path, "3")

	var mu sync.Mutex
	var got []int
	w, err := Watch(path, nil, func(cfg Config) {
		mu.Lock()
		got = append(got, cfg.Retry.MaxAttempts)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Stop()

	writeConfig(t, path, "-1") // fails validation

	time.Sleep(500 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{3}, got)
}

func TestWatch_MissingFile(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), nil, func(Config) {})
	assert.Error(t, err)
}
