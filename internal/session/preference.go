package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// PreferenceStore persists the last tenant a user explicitly selected. It is
// the single authority for that value: written on explicit switch, read only
// as a resolution fallback, cleared on logout. Implementations must be
// read-your-writes for a single user.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, slug string) error
	Clear(ctx context.Context, userID string) error
}

// ErrNoPreference is returned when a user has never selected a tenant.
var ErrNoPreference = errors.New("session: no saved tenant preference")

// RedisPreferenceStore keeps the preference in redis so it survives gateway
// restarts and is shared across replicas.
type RedisPreferenceStore struct {
	client redis.UniversalClient
}

// NewRedisPreferenceStore creates a redis-backed preference store.
func NewRedisPreferenceStore(client redis.UniversalClient) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client}
}

func (s *RedisPreferenceStore) key(userID string) string {
	return fmt.Sprintf("admingate:tenant-pref:%s", userID)
}

func (s *RedisPreferenceStore) Get(ctx context.Context, userID string) (string, error) {
	slug, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoPreference
	}
	if err != nil {
		return "", fmt.Errorf("get tenant preference: %w", err)
	}
	return slug, nil
}

func (s *RedisPreferenceStore) Set(ctx context.Context, userID, slug string) error {
	if err := s.client.Set(ctx, s.key(userID), slug, 0).Err(); err != nil {
		return fmt.Errorf("save tenant preference: %w", err)
	}
	return nil
}

func (s *RedisPreferenceStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear tenant preference: %w", err)
	}
	return nil
}

// MemoryPreferenceStore is an in-process PreferenceStore for tests and
// single-instance development setups.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]string
}

// NewMemoryPreferenceStore creates an empty in-memory store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{prefs: make(map[string]string)}
}

func (s *MemoryPreferenceStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug, ok := s.prefs[userID]
	if !ok {
		return "", ErrNoPreference
	}
	return slug, nil
}

func (s *MemoryPreferenceStore) Set(_ context.Context, userID, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = slug
	return nil
}

func (s *MemoryPreferenceStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prefs, userID)
	return nil
}
