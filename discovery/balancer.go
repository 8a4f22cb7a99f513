package discovery

import (
	"math/rand"
	"strconv"
	"sync/atomic"
)

// Balancer picks one instance from a discovered set.
type Balancer interface {
	Pick(instances []Instance) (Instance, error)
}

// RoundRobin distributes picks evenly across instances in order. Safe for
// concurrent use.
type RoundRobin struct {
	next atomic.Uint64
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (b *RoundRobin) Pick(instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}
	n := b.next.Add(1) - 1
	return instances[n%uint64(len(instances))], nil
}

// Random picks a uniformly random instance.
type Random struct{}

func NewRandom() *Random {
	return &Random{}
}

func (b *Random) Pick(instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}
	return instances[rand.Intn(len(instances))], nil
}

// Weighted picks instances proportionally to their "weight" metadata entry.
// Instances without a parseable positive weight count as weight 1.
type Weighted struct{}

func NewWeighted() *Weighted {
	return &Weighted{}
}

func (b *Weighted) Pick(instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}

	total := 0
	weights := make([]int, len(instances))
	for i, inst := range instances {
		weights[i] = instanceWeight(inst)
		total += weights[i]
	}

	n := rand.Intn(total)
	for i, w := range weights {
		n -= w
		if n < 0 {
			return instances[i], nil
		}
	}
	return instances[len(instances)-1], nil
}

func instanceWeight(inst Instance) int {
	w, err := strconv.Atoi(inst.Metadata["weight"])
	if err != nil || w <= 0 {
		return 1
	}
	return w
}
