package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers logged out token ids until they expire
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevoker shares revocations between server instances
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, prefix: "videohost:revoked:"}
}

// NewRedisClient builds the client used for revocations
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+jti, 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevoker keeps revocations in process. Entries drop out once expired.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke records jti and drops entries that have already expired
func (m *MemoryRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if !now.Before(exp) {
			delete(m.revoked, id)
		}
	}
	m.revoked[jti] = until
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.revoked, jti)
		return false, nil
	}
	return true, nil
}
