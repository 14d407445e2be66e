// Package session persists the basket of a single shopper session so a restarted process can
// pick it up again.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/basket"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/redis"
)

// Repository stores basket snapshots by session id.
type Repository interface {
	Load(ctx context.Context, sessionID string) (basket.Snapshot, bool, error)
	Save(ctx context.Context, sessionID string, snap basket.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	BasketSnapshotKey(sessionID string) string
}

// RedisRepository keeps snapshots as JSON strings with a sliding TTL.
type RedisRepository struct {
	client redisStore
	ttl    time.Duration
}

func NewRedisRepository(client redisStore, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (basket.Snapshot, bool, error) {
	key := r.client.BasketSnapshotKey(sessionID)
	raw, err := r.client.Get(ctx, key)
	if redis.IsNil(err) {
		return basket.Snapshot{}, false, nil
	}
	if err != nil {
		return basket.Snapshot{}, false, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "load basket snapshot")
	}
	var snap basket.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return basket.Snapshot{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode basket snapshot")
	}
	if r.ttl > 0 {
		if _, err := r.client.Expire(ctx, key, r.ttl); err != nil {
			return snap, true, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "refresh basket snapshot ttl")
		}
	}
	return snap, true, nil
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, snap basket.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode basket snapshot")
	}
	if err := r.client.Set(ctx, r.client.BasketSnapshotKey(sessionID), string(payload), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "save basket snapshot")
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.client.BasketSnapshotKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "delete basket snapshot")
	}
	return nil
}

// MemoryRepository is used when no redis endpoint is configured. Snapshots live as long as the
// process.
type MemoryRepository struct {
	mu    sync.RWMutex
	snaps map[string]basket.Snapshot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snaps: map[string]basket.Snapshot{}}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) (basket.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[sessionID]
	if !ok {
		return basket.Snapshot{}, false, nil
	}
	return copySnapshot(snap), true, nil
}

func (m *MemoryRepository) Save(_ context.Context, sessionID string, snap basket.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[sessionID] = copySnapshot(snap)
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, sessionID)
	return nil
}

func copySnapshot(snap basket.Snapshot) basket.Snapshot {
	ids := make([]string, len(snap.ItemIDs))
	copy(ids, snap.ItemIDs)
	snap.ItemIDs = ids
	return snap
}
