package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instancesNamed(ids ...string) []Instance {
	out := make([]Instance, len(ids))
	for i, id := range ids {
		out[i] = Instance{ID: id, Service: "svc", Address: id + ":8080"}
	}
	return out
}

func TestRoundRobin_CyclesInOrder(t *testing.T) {
	b := NewRoundRobin()
	set := instancesNamed("a", "b", "c")

	var got []string
	for i := 0; i < 6; i++ {
		inst, err := b.Pick(set)
		require.NoError(t, err)
		got = append(got, inst.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, got)
}

func TestRoundRobin_Empty(t *testing.T) {
	_, err := NewRoundRobin().Pick(nil)
	assert.ErrorIs(t, err, ErrNoInstances)
}

func TestRandom_PicksFromSet(t *testing.T) {
	b := NewRandom()
	set := instancesNamed("a", "b")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		inst, err := b.Pick(set)
		require.NoError(t, err)
		seen[inst.ID] = true
	}
	assert.True(t, seen["a"])
	assert.True(t, seen["b"])

	_, err := b.Pick(nil)
	assert.ErrorIs(t, err, ErrNoInstances)
}

func TestWeighted_RespectsWeights(t *testing.T) {
	b := NewWeighted()
	set := []Instance{
		{ID: "heavy", Metadata: map[string]string{"weight": "9"}},
		{ID: "light", Metadata: map[string]string{"weight": "1"}},
	}

	counts := make(map[string]int)
	for i := 0; i < 2000; i++ {
		inst, err := b.Pick(set)
		require.NoError(t, err)
		counts[inst.ID]++
	}

	assert.Greater(t, counts["heavy"], counts["light"]*3)
	assert.Greater(t, counts["light"], 0)
}

func TestWeighted_DefaultsMissingWeightToOne(t *testing.T) {
	assert.Equal(t, 1, instanceWeight(Instance{}))
	assert.Equal(t, 1, instanceWeight(Instance{Metadata: map[string]string{"weight": "bogus"}}))
	assert.Equal(t, 1, instanceWeight(Instance{Metadata: map[string]string{"weight": "-3"}}))
	assert.Equal(t, 7, instanceWeight(Instance{Metadata: map[string]string{"weight": "7"}}))
}
