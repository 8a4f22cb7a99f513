package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ProberConfig configures active HTTP health probing of registered
// instances.
type ProberConfig struct {
	// Interval is how often every instance is probed. Default: 15 seconds
	Interval time.Duration

	// Timeout bounds each probe request. Default: 5 seconds
	Timeout time.Duration

	// Path is the health endpoint requested on each instance.
	// Default: /healthz
	Path string

	// Client is the HTTP client used for probes. Default: http.DefaultClient
	Client *http.Client

	// Logger receives probe failures. Default: slog.Default()
	Logger *slog.Logger
}

func (c ProberConfig) withDefaults() ProberConfig {
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.Path == "" {
		c.Path = "/healthz"
	}
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Prober actively probes every registered instance over HTTP and pushes the
// result back into the registry, overriding heartbeat-derived status.
type Prober struct {
	config   ProberConfig
	registry *Registry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewProber creates a prober bound to a registry. Call Start to begin
// probing.
func NewProber(registry *Registry, config ProberConfig) *Prober {
	return &Prober{
		config:   config.withDefaults(),
		registry: registry,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the probe loop.
func (p *Prober) Start() {
	go p.loop()
}

// Stop halts the probe loop and waits for in-flight probes to finish.
func (p *Prober) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done
	})
}

func (p *Prober) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.probeAll()
		}
	}
}

func (p *Prober) probeAll() {
	var instances []Instance
	for _, service := range p.registry.Services() {
		instances = append(instances, p.registry.allOf(service)...)
	}

	var wg sync.WaitGroup
	for _, inst := range instances {
		wg.Add(1)
		go func(inst Instance) {
			defer wg.Done()
			p.probe(inst)
		}(inst)
	}
	wg.Wait()
}

func (p *Prober) probe(inst Instance) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	status := StatusHealthy
	if err := p.check(ctx, inst); err != nil {
		status = StatusUnhealthy
		p.config.Logger.Warn("health probe failed",
			"service", inst.Service,
			"instance", inst.ID,
			"address", inst.Address,
			"error", err)
	}

	// Ignore not-found: the instance may have deregistered mid-probe.
	_ = p.registry.SetStatus(inst.ID, status)
}

func (p *Prober) check(ctx context.Context, inst Instance) error {
	url := "http://" + inst.Address + p.config.Path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.config.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// allOf returns every instance of a service regardless of status or
// heartbeat age, for probing.
func (r *Registry) allOf(service string) []Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Instance
	for _, inst := range r.instances {
		if inst.Service == service {
			out = append(out, *inst)
		}
	}
	return out
}
