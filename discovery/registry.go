package discovery

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the advertised health of a registered instance.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Instance is one registered service endpoint.
type Instance struct {
	ID            string            `json:"id"`
	Service       string            `json:"service"`
	Address       string            `json:"address"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Status        Status            `json:"status"`
	RegisteredAt  time.Time         `json:"registered_at"`
	LastHeartbeat time.Time         `json:"last_heartbeat"`
}

// RegistryConfig configures the in-memory service registry.
type RegistryConfig struct {
	// ServiceTimeout is how stale an instance's heartbeat may be before it
	// stops being returned by Discover. Default: 30 seconds
	ServiceTimeout time.Duration

	// SweepInterval is how often expired instances are removed.
	// Default: 10 seconds
	SweepInterval time.Duration

	// OnExpire, if set, is called with each instance removed by the sweeper.
	OnExpire func(Instance)
}

func (c RegistryConfig) withDefaults() RegistryConfig {
	if c.ServiceTimeout <= 0 {
		c.ServiceTimeout = 30 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 10 * time.Second
	}
	return c
}

// Registry is an in-memory service registry with heartbeat-based liveness.
// Instances that miss their heartbeat window are hidden from discovery and
// eventually swept out entirely.
type Registry struct {
	config RegistryConfig

	mu        sync.RWMutex
	instances map[string]*Instance

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry creates a registry and starts its background sweeper.
func NewRegistry(config RegistryConfig) *Registry {
	r := &Registry{
		config:    config.withDefaults(),
		instances: make(map[string]*Instance),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Register adds an instance and returns its assigned ID. The instance starts
// healthy with a fresh heartbeat.
func (r *Registry) Register(service, address string, metadata map[string]string) (string, error) {
	if service == "" {
		return "", fmt.Errorf("discovery: %w: empty service name", ErrInvalidInstance)
	}
	if address == "" {
		return "", fmt.Errorf("discovery: %w: empty address", ErrInvalidInstance)
	}

	now := time.Now()
	inst := &Instance{
		ID:            uuid.New().String(),
		Service:       service,
		Address:       address,
		Metadata:      metadata,
		Status:        StatusHealthy,
		RegisteredAt:  now,
		LastHeartbeat: now,
	}

	r.mu.Lock()
	r.instances[inst.ID] = inst
	r.mu.Unlock()
	return inst.ID, nil
}

// Deregister removes an instance by ID.
func (r *Registry) Deregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[id]; !ok {
		return fmt.Errorf("discovery: %w: %s", ErrInstanceNotFound, id)
	}
	delete(r.instances, id)
	return nil
}

// Heartbeat refreshes an instance's liveness window and marks it healthy.
func (r *Registry) Heartbeat(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return fmt.Errorf("discovery: %w: %s", ErrInstanceNotFound, id)
	}
	inst.LastHeartbeat = time.Now()
	inst.Status = StatusHealthy
	return nil
}

// SetStatus overrides an instance's advertised status, typically from an
// active health probe.
func (r *Registry) SetStatus(id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return fmt.Errorf("discovery: %w: %s", ErrInstanceNotFound, id)
	}
	inst.Status = status
	return nil
}

// Discover returns the healthy instances of a service whose heartbeat is
// still within the liveness window. The returned slice is a copy.
func (r *Registry) Discover(service string) []Instance {
	cutoff := time.Now().Add(-r.config.ServiceTimeout)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Instance
	for _, inst := range r.instances {
		if inst.Service != service {
			continue
		}
		if inst.Status != StatusHealthy || inst.LastHeartbeat.Before(cutoff) {
			continue
		}
		out = append(out, *inst)
	}
	return out
}

// Services returns the distinct service names with at least one registered
// instance, live or not.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, inst := range r.instances {
		if _, ok := seen[inst.Service]; ok {
			continue
		}
		seen[inst.Service] = struct{}{}
		out = append(out, inst.Service)
	}
	return out
}

// Stop halts the background sweeper. Registered instances remain queryable.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		<-r.done
	})
}

func (r *Registry) sweepLoop() {
	defer close(r.done)

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep removes instances whose heartbeat has been stale for two full
// liveness windows. One window only hides an instance from Discover, so a
// slow service gets a grace period to heartbeat again before it must
// re-register.
func (r *Registry) sweep() {
	cutoff := time.Now().Add(-2 * r.config.ServiceTimeout)

	r.mu.Lock()
	var expired []Instance
	for id, inst := range r.instances {
		if inst.LastHeartbeat.Before(cutoff) {
			expired = append(expired, *inst)
			delete(r.instances, id)
		}
	}
	r.mu.Unlock()

	if r.config.OnExpire != nil {
		for _, inst := range expired {
			r.config.OnExpire(inst)
		}
	}
}
