package discovery

import (
	"sync"
	"time"
)

// ClientConfig configures a discovery client.
type ClientConfig struct {
	// CacheTTL is how long a discovery result is reused before the registry
	// is consulted again. Default: 5 seconds
	CacheTTL time.Duration

	// Balancer picks among the discovered instances.
	// Default: round-robin
	Balancer Balancer
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Second
	}
	if c.Balancer == nil {
		c.Balancer = NewRoundRobin()
	}
	return c
}

type cachedSet struct {
	instances []Instance
	expiresAt time.Time
}

// Client resolves service names to instances, caching discovery results for
// a short TTL and load-balancing across the cached set.
type Client struct {
	config   ClientConfig
	registry *Registry

	mu    sync.RWMutex
	cache map[string]cachedSet
}

// NewClient creates a discovery client over a registry.
func NewClient(registry *Registry, config ClientConfig) *Client {
	return &Client{
		config:   config.withDefaults(),
		registry: registry,
		cache:    make(map[string]cachedSet),
	}
}

// Resolve returns one healthy instance of the service, chosen by the
// configured balancer.
func (c *Client) Resolve(service string) (Instance, error) {
	instances := c.lookup(service)
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}
	return c.config.Balancer.Pick(instances)
}

// Instances returns all healthy instances of the service, possibly from
// cache.
func (c *Client) Instances(service string) []Instance {
	return c.lookup(service)
}

// Invalidate drops the cached instance set for a service, forcing the next
// Resolve to consult the registry. Useful after a request to a resolved
// instance fails.
func (c *Client) Invalidate(service string) {
	c.mu.Lock()
	delete(c.cache, service)
	c.mu.Unlock()
}

func (c *Client) lookup(service string) []Instance {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[service]
	c.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.instances
	}

	instances := c.registry.Discover(service)

	c.mu.Lock()
	c.cache[service] = cachedSet{
		instances: instances,
		expiresAt: now.Add(c.config.CacheTTL),
	}
	c.mu.Unlock()
	return instances
}
