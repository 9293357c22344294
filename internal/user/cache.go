package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"userhub.org/internal/obs"
)

// listCacheKey holds the serialized snapshot of the full user list.
const listCacheKey = "users"

// RedisClient is the minimal Redis surface needed for caching.
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var _ Store = (*CachedStore)(nil)

// CachedStore wraps a Store with a Redis read-through cache for the user
// list. The snapshot lives under a single key with a TTL; every successful
// write deletes the key, strictly after the store acknowledged the commit.
// Concurrent misses may both read the store and both write the cache;
// last-write-wins is fine because the values are equal modulo ordering.
type CachedStore struct {
	store  Store
	client RedisClient
	ttl    time.Duration
}

// NewCachedStore wraps store with a Redis-backed list cache.
func NewCachedStore(store Store, client RedisClient, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{store: store, client: client, ttl: ttl}
}

// Create persists the user and invalidates the list snapshot. Invalidation
// runs only after the insert succeeded, never speculatively. If the delete
// itself fails the write still stands: readers may see a stale list for at
// most the TTL, and the failure is logged rather than swallowed.
func (c *CachedStore) Create(ctx context.Context, u *User) error {
	if err := c.store.Create(ctx, u); err != nil {
		return err
	}
	if err := c.client.Del(ctx, listCacheKey).Err(); err != nil {
		obs.Logger().Warn("user list cache invalidation failed; stale reads bounded by TTL",
			zap.String("cache_key", listCacheKey),
			zap.Duration("ttl", c.ttl),
			zap.Error(err))
	}
	return nil
}

func (c *CachedStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return c.store.FindByEmail(ctx, email)
}

// List is a read-through: on a hit the store is not touched at all; on a
// miss the full set is read from the store, cached with the TTL and returned.
func (c *CachedStore) List(ctx context.Context) ([]User, error) {
	cached, err := c.client.Get(ctx, listCacheKey).Result()
	if err == nil {
		var users []User
		if unmarshalErr := json.Unmarshal([]byte(cached), &users); unmarshalErr == nil {
			obs.CacheHit()
			return users, nil
		}
		// Corrupt entry: fall through to the store and overwrite it.
		obs.Logger().Warn("corrupt user list cache entry", zap.String("cache_key", listCacheKey))
	} else if err != redis.Nil {
		return nil, fmt.Errorf("user: cache read: %w", err)
	}

	obs.CacheMiss()
	users, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(users)
	if err != nil {
		obs.Logger().Warn("marshal user list for cache", zap.Error(err))
		return users, nil
	}
	if err := c.client.Set(ctx, listCacheKey, payload, c.ttl).Err(); err != nil {
		obs.Logger().Warn("user list cache write failed", zap.Error(err))
	}
	return users, nil
}
