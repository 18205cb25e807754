// Package store aggregates both platform pools behind a TTL snapshot
// cache, computes filter facets and serves filtered views.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gymrun/gymrun/internal/domain"
)

// Snapshot is one cached aggregate of both platform pools.
type Snapshot struct {
	Problems  []domain.Problem `json:"problems"`
	Degraded  bool             `json:"degraded"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// SnapshotCache stores aggregate snapshots with a TTL. Implementations
// must be safe for concurrent use.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (Snapshot, bool)
	Set(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// MemoryCache is the default in-process snapshot cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Snapshot, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return Snapshot{}, false
	}
	return entry.snap, true
}

func (m *MemoryCache) Set(_ context.Context, key string, snap Snapshot, ttl time.Duration) error {
	m.mu.Lock()
	m.data[key] = memoryEntry{snap: snap, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error { return nil }

// RedisCache keeps snapshots in Redis so multiple instances share one
// upstream fetch per TTL window.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache connects to Redis at addr.
func NewRedisCache(addr string, db int, keyPrefix string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) (Snapshot, bool) {
	result, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if err != nil {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(result), &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

func (r *RedisCache) Set(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
