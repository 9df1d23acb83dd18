package store

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Well-known keys for the two pieces of persisted conversation state.
// Both are cleared together on a conversation reset.
const (
	SessionIDKey      = "investbud:session:id"
	SessionSubjectKey = "investbud:session:subject"
	EntitlementKey    = "investbud:entitlement"
)

// Store is the persistence boundary for conversation state. Implementations
// must treat a missing key as (value="", ok=false, err=nil).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore persists conversation state in Redis.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// MemoryStore is an in-process Store for tests and stateless deployments.
type MemoryStore struct {
	mu   sync.Mutex
	vals map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.vals[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.vals, key)
	}
	return nil
}
