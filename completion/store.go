package completion

import (
	"context"
	"errors"
	"sync"

	redis "github.com/redis/go-redis/v9"
)

// Store is the key/value persistence the state machine runs on. GetItem
// returns ("", nil) for absent keys; callers must treat any read failure as
// an absent record, never as a locked one.
type Store interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

// RedisStore keeps completion state in Redis. Keys carry no TTL: expiry is
// evaluated lazily from the cooldown timestamp inside the record.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "completion:"}
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

// MemoryStore is the fallback when Redis is not configured, and the store
// used by tests. Synchronous and process-local, like the browser storage it
// stands in for.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (s *MemoryStore) GetItem(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[key], nil
}

func (s *MemoryStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}
