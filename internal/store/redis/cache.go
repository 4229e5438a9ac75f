// Package redis implements the optional bookmark list cache. It is a
// cache, not a store of record: the Diigo API stays authoritative and
// every entry expires after the configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/diigo-mcp/internal/domain"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

// Cache stores fetched bookmark lists keyed by user and filters.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewCache builds a Cache with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, log: log}
}

// GetList returns a cached list, or false on miss. Cache failures are
// treated as misses: the caller falls through to the API.
func (c *Cache) GetList(ctx context.Context, key string) ([]domain.Bookmark, bool) {
	data, err := c.client.Get(ctx, ListKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("bookmark list cache read failed", logger.Error(err))
		}
		return nil, false
	}

	var list []domain.Bookmark
	if err := json.Unmarshal(data, &list); err != nil {
		c.log.Warn("bookmark list cache entry corrupt, dropping", logger.Error(err))
		c.client.Del(ctx, ListKey(key))
		return nil, false
	}
	return list, true
}

// SetList caches a list under the configured TTL. Failures are logged
// and otherwise ignored; caching is best effort.
func (c *Cache) SetList(ctx context.Context, key string, list []domain.Bookmark) {
	data, err := json.Marshal(list)
	if err != nil {
		c.log.Warn("bookmark list cache marshal failed", logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, ListKey(key), data, c.ttl).Err(); err != nil {
		c.log.Warn("bookmark list cache write failed", logger.Error(err))
	}
}

// InvalidateUser drops every cached list belonging to the user. Called
// after any mutation so stale lists never outlive a write.
func (c *Cache) InvalidateUser(ctx context.Context, user string) {
	iter := c.client.Scan(ctx, 0, UserPattern(user), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("bookmark list cache invalidation failed",
				logger.String("key", iter.Val()),
				logger.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("bookmark list cache scan failed", logger.Error(err))
	}
}
