package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UsesCache(t *testing.T) {
	r := testRegistry(t, RegistryConfig{})
	c := NewClient(r, ClientConfig{CacheTTL: time.Hour})

	id, err := r.Register("billing", "10.0.0.1:8080", nil)
	require.NoError(t, err)

	inst, err := c.Resolve("billing")
	require.NoError(t, err)
	assert.Equal(t, id, inst.ID)

	// A registration after the cache fill is invisible until the TTL
	// expires or the cache is invalidated.
	_, err = r.Register("billing", "10.0.0.2:8080", nil)
	require.NoError(t, err)
	assert.Len(t, c.Instances("billing"), 1)

	c.Invalidate("billing")
	assert.Len(t, c.Instances("billing"), 2)
}

func TestResolve_CacheExpiry(t *testing.T) {
	r := testRegistry(t, RegistryConfig{})
	c := NewClient(r, ClientConfig{CacheTTL: 20 * time.Millisecond})

	_, err := r.Register("billing", "10.0.0.1:8080", nil)
	require.NoError(t, err)
	require.Len(t, c.Instances("billing"), 1)

	_, err = r.Register("billing", "10.0.0.2:8080", nil)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, c.Instances("billing"), 2)
}

func TestResolve_NoInstances(t *testing.T) {
	r := testRegistry(t, RegistryConfig{})
	c := NewClient(r, ClientConfig{})

	_, err := c.Resolve("ghost")
	assert.ErrorIs(t, err, ErrNoInstances)
}

func TestResolve_BalancesAcrossInstances(t *testing.T) {
	r := testRegistry(t, RegistryConfig{})
	c := NewClient(r, ClientConfig{CacheTTL: time.Hour})

	a, err := r.Register("billing", "10.0.0.1:8080", nil)
	require.NoError(t, err)
	b, err := r.Register("billing", "10.0.0.2:8080", nil)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		inst, err := c.Resolve("billing")
		require.NoError(t, err)
		seen[inst.ID] = true
	}
	assert.True(t, seen[a])
	assert.True(t, seen[b])
}
