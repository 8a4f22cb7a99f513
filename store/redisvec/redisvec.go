package redisvec

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zoernert/rhajaina-dal/store"
)

// Config holds Redis vector store configuration.
type Config struct {
	URL            string        `yaml:"url"`
	Password       string        `yaml:"password"`
	Dimensions     int           `yaml:"dimensions"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

func (c Config) withDefaults() Config {
	if c.Dimensions <= 0 {
		c.Dimensions = 1536
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	return c
}

// Store is a vector store backed by Redis with the RediSearch module. Points
// live in hashes keyed <collection>:<id>; KNN queries go through FT.SEARCH.
type Store struct {
	name string
	cfg  Config

	mu  sync.RWMutex
	rdb *redis.Client
}

// New creates an unconnected store adapter.
func New(name string, cfg Config) *Store {
	return &Store{name: name, cfg: cfg.withDefaults()}
}

// Name returns the configured store name.
func (s *Store) Name() string {
	return s.name
}

// Connect establishes the Redis client and verifies it with a ping.
func (s *Store) Connect(ctx context.Context) error {
	opts, err := redis.ParseURL(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("redisvec: parse url: %w", err)
	}
	if s.cfg.Password != "" {
		opts.Password = s.cfg.Password
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redisvec: ping: %w", err)
	}

	s.mu.Lock()
	s.rdb = rdb
	s.mu.Unlock()
	return nil
}

// Disconnect closes the Redis client. Idempotent.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	rdb := s.rdb
	s.rdb = nil
	s.mu.Unlock()

	if rdb == nil {
		return nil
	}
	return rdb.Close()
}

// HealthCheck pings the Redis server.
func (s *Store) HealthCheck(ctx context.Context) error {
	rdb, err := s.client()
	if err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}

func (s *Store) client() (*redis.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rdb == nil {
		return nil, store.ErrNotConnected
	}
	return s.rdb, nil
}

func (s *Store) validateVector(vector []float32) error {
	if len(vector) != s.cfg.Dimensions {
		return &store.DimensionError{Want: s.cfg.Dimensions, Got: len(vector)}
	}
	return nil
}

// EnsureIndex creates the vector index for a collection if missing.
func (s *Store) EnsureIndex(ctx context.Context, collection string) error {
	rdb, err := s.client()
	if err != nil {
		return err
	}

	err = rdb.Do(ctx,
		"FT.CREATE", indexName(collection),
		"ON", "HASH", "PREFIX", "1", collection+":",
		"SCHEMA",
		"vector", "VECTOR", "HNSW", "6",
		"TYPE", "FLOAT32",
		"DIM", s.cfg.Dimensions,
		"DISTANCE_METRIC", "COSINE",
	).Err()
	if err != nil && !isIndexExists(err) {
		return fmt.Errorf("redisvec: create index: %w", err)
	}
	return nil
}

// Upsert stores one vector point with its payload.
func (s *Store) Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]any) error {
	rdb, err := s.client()
	if err != nil {
		return err
	}
	if err := s.validateVector(vector); err != nil {
		return err
	}

	fields := map[string]any{"vector": vectorBytes(vector)}
	for k, v := range payload {
		fields[k] = v
	}

	if err := rdb.HSet(ctx, pointKey(collection, id), fields).Err(); err != nil {
		return fmt.Errorf("redisvec: hset: %w", err)
	}
	return nil
}

// Delete removes one vector point. Deleting a missing point is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	rdb, err := s.client()
	if err != nil {
		return err
	}
	return rdb.Del(ctx, pointKey(collection, id)).Err()
}

// Search returns up to limit nearest neighbors of vector by cosine distance.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]store.SearchResult, error) {
	rdb, err := s.client()
	if err != nil {
		return nil, err
	}
	if err := s.validateVector(vector); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	raw, err := rdb.Do(ctx,
		"FT.SEARCH", indexName(collection),
		fmt.Sprintf("*=>[KNN %d @vector $vec AS score]", limit),
		"PARAMS", "2", "vec", vectorBytes(vector),
		"SORTBY", "score",
		"RETURN", "1", "score",
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, fmt.Errorf("redisvec: search: %w", err)
	}

	return parseSearchReply(collection, raw)
}

func pointKey(collection, id string) string {
	return collection + ":" + id
}

func indexName(collection string) string {
	return "idx:" + collection
}

// vectorBytes serializes a vector as little-endian float32, the layout
// RediSearch expects for FLOAT32 fields.
func vectorBytes(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// Compile-time interface checks.
var (
	_ store.Store          = (*Store)(nil)
	_ store.VectorSearcher = (*Store)(nil)
)
