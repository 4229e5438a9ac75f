// Package memory provides an in-memory bookmark-list cache. It acts as
// a fallback when Redis is not configured or unavailable.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/domain"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

type entry struct {
	list    []domain.Bookmark
	expires time.Time
}

// Cache stores bookmark lists keyed by their list parameters, with a
// fixed TTL. Expired entries are invisible to readers and reclaimed by
// a periodic Sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	log     logger.Logger
}

// NewCache builds a Cache with the given entry TTL.
func NewCache(ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		log:     log,
	}
}

// GetList returns the cached list for key, if present and fresh.
func (c *Cache) GetList(_ context.Context, key string) ([]domain.Bookmark, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.list, true
}

// SetList stores a list under key for the configured TTL.
func (c *Cache) SetList(_ context.Context, key string, list []domain.Bookmark) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{list: list, expires: time.Now().Add(c.ttl)}
}

// InvalidateUser drops every cached list belonging to user.
func (c *Cache) InvalidateUser(_ context.Context, user string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := user + "|"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Sweep removes entries that expired before now and returns how many
// were reclaimed.
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	swept := 0
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			swept++
		}
	}
	return swept
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
