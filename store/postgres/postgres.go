package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx via database/sql
	"github.com/jmoiron/sqlx"

	"github.com/zoernert/rhajaina-dal/store"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL            string        `yaml:"url"`
	MaxConns       int           `yaml:"max_conns"`
	MinConns       int           `yaml:"min_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

func (c Config) withDefaults() Config {
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	if c.MinConns <= 0 {
		c.MinConns = 2
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	return c
}

// Store is a document store backed by PostgreSQL JSONB.
type Store struct {
	name string
	cfg  Config

	mu sync.RWMutex
	db *sqlx.DB
}

// New creates an unconnected store adapter.
func New(name string, cfg Config) *Store {
	return &Store{name: name, cfg: cfg.withDefaults()}
}

// Name returns the configured store name.
func (s *Store) Name() string {
	return s.name
}

// Connect opens the connection pool and verifies it with a ping.
func (s *Store) Connect(ctx context.Context) error {
	db, err := sqlx.Open("pgx", s.cfg.URL)
	if err != nil {
		return fmt.Errorf("postgres: open: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxConns)
	db.SetMaxIdleConns(s.cfg.MinConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("postgres: ping: %w", mapError(err))
	}

	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
	return nil
}

// Disconnect closes the connection pool. Idempotent.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) conn() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, store.ErrNotConnected
	}
	return s.db, nil
}

// Compile-time interface checks.
var (
	_ store.Store              = (*Store)(nil)
	_ store.TransactionalStore = (*Store)(nil)
)
