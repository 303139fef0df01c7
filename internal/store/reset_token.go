// Package store keeps short-lived password-reset tokens in Redis, or in process memory when no
// Redis address is configured.
package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("reset token not found or expired")

const keyPrefix = "backoffice:pwreset:"

// ResetTokenStore maps an opaque token to a user. Consume is single-use.
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Consume(ctx context.Context, token string) (uint, error)
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) ResetTokenStore {
	return &redisStore{client: client}
}

func (r *redisStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+token, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (r *redisStore) Consume(ctx context.Context, token string) (uint, error) {
	val, err := r.client.GetDel(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrTokenNotFound
	}
	return uint(id), nil
}

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() ResetTokenStore {
	return &memoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *memoryStore) Save(_ context.Context, token string, userID uint, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[token] = memoryEntry{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (m *memoryStore) Consume(_ context.Context, token string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[token]
	if !ok {
		return 0, ErrTokenNotFound
	}
	delete(m.entries, token)
	if m.now().After(e.expiresAt) {
		return 0, ErrTokenNotFound
	}
	return e.userID, nil
}

// New picks Redis when addr is set, memory otherwise
func New(addr, password string) (ResetTokenStore, func() error) {
	if addr == "" {
		return NewMemoryStore(), func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return NewRedisStore(client), client.Close
}
