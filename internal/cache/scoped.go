// Package cache provides the tenant-scoped query cache. Every entry is
// namespaced by tenant id, and switching tenants invalidates the whole
// namespace at once. This is the mechanism that keeps data fetched under
// tenant A's header from ever being served under tenant B's context.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or its tenant namespace has been
// invalidated.
var ErrMiss = errors.New("cache: miss")

// TenantScoped is a byte cache whose keys live inside a per-tenant
// namespace.
type TenantScoped interface {
	Get(ctx context.Context, tenantID int64, key string) ([]byte, error)
	Set(ctx context.Context, tenantID int64, key string, value []byte, ttl time.Duration) error
	// InvalidateTenant drops every entry in the tenant's namespace. Called
	// on every tenant switch; must be O(1) regardless of entry count.
	InvalidateTenant(ctx context.Context, tenantID int64) error
}

// RedisScoped implements TenantScoped on redis. Invalidation bumps a
// per-tenant generation counter that is baked into every key, so old
// entries become unreachable immediately and expire on their own TTL.
type RedisScoped struct {
	client redis.UniversalClient
}

// NewRedisScoped creates a redis-backed tenant-scoped cache.
func NewRedisScoped(client redis.UniversalClient) *RedisScoped {
	return &RedisScoped{client: client}
}

func (c *RedisScoped) genKey(tenantID int64) string {
	return fmt.Sprintf("admingate:cache-gen:%d", tenantID)
}

func (c *RedisScoped) generation(ctx context.Context, tenantID int64) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(tenantID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(gen, 10, 64)
}

func (c *RedisScoped) entryKey(tenantID, gen int64, key string) string {
	return fmt.Sprintf("admingate:cache:%d:%d:%s", tenantID, gen, key)
}

func (c *RedisScoped) Get(ctx context.Context, tenantID int64, key string) ([]byte, error) {
	gen, err := c.generation(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("cache generation: %w", err)
	}
	val, err := c.client.Get(ctx, c.entryKey(tenantID, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return val, nil
}

func (c *RedisScoped) Set(ctx context.Context, tenantID int64, key string, value []byte, ttl time.Duration) error {
	gen, err := c.generation(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("cache generation: %w", err)
	}
	if err := c.client.Set(ctx, c.entryKey(tenantID, gen, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisScoped) InvalidateTenant(ctx context.Context, tenantID int64) error {
	if err := c.client.Incr(ctx, c.genKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// MemoryScoped is an in-process TenantScoped for tests and single-instance
// development setups.
type MemoryScoped struct {
	mu      sync.RWMutex
	entries map[int64]map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryScoped creates an empty in-memory cache.
func NewMemoryScoped() *MemoryScoped {
	return &MemoryScoped{entries: make(map[int64]map[string]memoryEntry)}
}

func (c *MemoryScoped) Get(_ context.Context, tenantID int64, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[tenantID][key]
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (c *MemoryScoped) Set(_ context.Context, tenantID int64, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[tenantID] == nil {
		c.entries[tenantID] = make(map[string]memoryEntry)
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[tenantID][key] = entry
	return nil
}

func (c *MemoryScoped) InvalidateTenant(_ context.Context, tenantID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
	return nil
}
