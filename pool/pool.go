package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zoernert/rhajaina-dal/resilience"
	"github.com/zoernert/rhajaina-dal/store"
)

// Config configures the connection pool.
type Config struct {
	// HealthCheckInterval is how often every managed store is probed.
	// Default: 30 seconds
	HealthCheckInterval time.Duration

	// ConnectTimeout bounds each connect and health-check call.
	// Default: 10 seconds
	ConnectTimeout time.Duration

	// Reconnect holds the retry policy for reconnection attempts.
	Reconnect resilience.RetryConfig

	// Breaker holds the circuit breaker policy applied per store.
	Breaker resilience.CircuitBreakerConfig

	// MaxConcurrent bounds in-flight operations per store.
	// Default: 10
	MaxConcurrent int

	// Logger receives connection lifecycle events. Default: slog.Default()
	Logger *slog.Logger

	// OnEvent, if set, is called for every connection lifecycle event.
	OnEvent func(Event)
}

func (c Config) withDefaults() Config {
	if c.HealthCheckInterval <= 0 {
		c.HealthCheckInterval = 30 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type entry struct {
	store    store.Store
	breaker  *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead

	mu        sync.RWMutex
	connected bool
}

func (e *entry) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *entry) setConnected(v bool) {
	e.mu.Lock()
	e.connected = v
	e.mu.Unlock()
}

// Pool manages a set of named stores: it connects them up front, probes them
// periodically, reconnects lost ones on demand, and guards every operation
// with a per-store circuit breaker and bulkhead.
type Pool struct {
	config  Config
	entries map[string]*entry

	reconnect *resilience.Retry
	inflight  singleflight.Group

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New connects every store and starts the background health loop. Any store
// failing its initial connect aborts construction; stores connected so far
// are disconnected again.
func New(ctx context.Context, config Config, stores ...store.Store) (*Pool, error) {
	config = config.withDefaults()

	p := &Pool{
		config:    config,
		entries:   make(map[string]*entry, len(stores)),
		reconnect: resilience.NewRetry(config.Reconnect),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, s := range stores {
		name := s.Name()
		if _, dup := p.entries[name]; dup {
			return nil, fmt.Errorf("pool: duplicate store name %q", name)
		}

		breakerCfg := config.Breaker
		prev := breakerCfg.OnStateChange
		breakerCfg.OnStateChange = func(from, to resilience.State) {
			p.onCircuitChange(name, from, to)
			if prev != nil {
				prev(from, to)
			}
		}

		p.entries[name] = &entry{
			store:    s,
			breaker:  resilience.NewCircuitBreaker(breakerCfg),
			bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: config.MaxConcurrent}),
		}
	}

	for name, e := range p.entries {
		if err := p.connect(ctx, name, e); err != nil {
			p.disconnectAll(ctx)
			return nil, fmt.Errorf("pool: connect %s: %w", name, err)
		}
	}

	go p.healthLoop()
	return p, nil
}

// Handle returns the named store, reconnecting it first if its connection was
// lost. Concurrent reconnects of the same store are coalesced.
func (p *Pool) Handle(ctx context.Context, name string) (store.Store, error) {
	e, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf("pool: %w: %s", ErrUnknownStore, name)
	}
	if err := p.ensureConnected(ctx, name, e); err != nil {
		return nil, err
	}
	return e.store, nil
}

// Execute runs op against the named store through its circuit breaker and
// bulkhead. A failed op marks the store for reconnection when its health
// check also fails.
func (p *Pool) Execute(ctx context.Context, name string, op func(ctx context.Context, s store.Store) error) error {
	e, ok := p.entries[name]
	if !ok {
		return fmt.Errorf("pool: %w: %s", ErrUnknownStore, name)
	}

	return e.breaker.Execute(ctx, func(ctx context.Context) error {
		return e.bulkhead.Execute(ctx, func(ctx context.Context) error {
			if err := p.ensureConnected(ctx, name, e); err != nil {
				return err
			}
			return op(ctx, e.store)
		})
	})
}

// WithTransaction runs fn inside a transaction on the named store, through
// the same breaker and bulkhead as Execute. The store must implement
// store.TransactionalStore.
func (p *Pool) WithTransaction(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return p.Execute(ctx, name, func(ctx context.Context, s store.Store) error {
		ts, ok := s.(store.TransactionalStore)
		if !ok {
			return fmt.Errorf("pool: store %s: %w", name, ErrNotTransactional)
		}
		return ts.WithTransaction(ctx, fn)
	})
}

// Stores returns the names of all managed stores.
func (p *Pool) Stores() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	return names
}

// Connected reports whether the named store currently holds a live
// connection.
func (p *Pool) Connected(name string) bool {
	e, ok := p.entries[name]
	return ok && e.isConnected()
}

// Close stops the health loop and disconnects every store.
func (p *Pool) Close(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done
	})
	return p.disconnectAll(ctx)
}

func (p *Pool) ensureConnected(ctx context.Context, name string, e *entry) error {
	if e.isConnected() {
		return nil
	}

	_, err, _ := p.inflight.Do(name, func() (any, error) {
		if e.isConnected() {
			return nil, nil
		}
		err := p.reconnect.Execute(ctx, func(ctx context.Context) error {
			return p.connect(ctx, name, e)
		})
		if err == nil {
			p.config.Logger.Info("store reconnected", "store", name)
		}
		return nil, err
	})
	return err
}

func (p *Pool) connect(ctx context.Context, name string, e *entry) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.ConnectTimeout)
	defer cancel()

	p.emit(Event{Type: EventConnecting, Store: name, Time: time.Now()})
	if err := e.store.Connect(ctx); err != nil {
		p.emit(Event{Type: EventError, Store: name, Err: err, Time: time.Now()})
		return err
	}
	e.setConnected(true)
	p.emit(Event{Type: EventConnected, Store: name, Time: time.Now()})
	p.config.Logger.Info("store connected", "store", name)
	return nil
}

func (p *Pool) disconnectAll(ctx context.Context) error {
	var firstErr error
	for name, e := range p.entries {
		if !e.isConnected() {
			continue
		}
		if err := e.store.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pool: disconnect %s: %w", name, err)
		}
		e.setConnected(false)
		p.emit(Event{Type: EventDisconnected, Store: name, Time: time.Now()})
	}
	return firstErr
}

func (p *Pool) healthLoop() {
	defer close(p.done)

	ticker := time.NewTicker(p.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.checkAll()
		}
	}
}

func (p *Pool) checkAll() {
	var wg sync.WaitGroup
	for name, e := range p.entries {
		wg.Add(1)
		go func(name string, e *entry) {
			defer wg.Done()
			p.check(name, e)
		}(name, e)
	}
	wg.Wait()
}

func (p *Pool) check(name string, e *entry) {
	if !e.isConnected() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.ConnectTimeout)
	defer cancel()

	err := e.store.HealthCheck(ctx)
	p.emit(Event{Type: EventHealthCheck, Store: name, Err: err, Time: time.Now()})
	if err != nil {
		e.setConnected(false)
		p.emit(Event{Type: EventDisconnected, Store: name, Err: err, Time: time.Now()})
		p.config.Logger.Warn("store health check failed",
			"store", name,
			"error", err)
	}
}

func (p *Pool) onCircuitChange(name string, from, to resilience.State) {
	switch to {
	case resilience.StateOpen:
		p.emit(Event{Type: EventCircuitOpened, Store: name, Time: time.Now()})
		p.config.Logger.Warn("circuit opened", "store", name, "from", from.String())
	case resilience.StateClosed:
		p.emit(Event{Type: EventCircuitClosed, Store: name, Time: time.Now()})
		p.config.Logger.Info("circuit closed", "store", name, "from", from.String())
	}
}

func (p *Pool) emit(ev Event) {
	if p.config.OnEvent != nil {
		p.config.OnEvent(ev)
	}
}
