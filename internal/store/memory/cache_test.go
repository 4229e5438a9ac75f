package memory

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/domain"
	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(time.Minute, logger.New("error", false))
	ctx := context.Background()

	list := []domain.Bookmark{{Title: "a", URL: "https://example.com/a"}}
	c.SetList(ctx, "alice|1|||", list)

	got, ok := c.GetList(ctx, "alice|1|||")
	if !ok {
		t.Fatal("GetList miss, want hit")
	}
	if len(got) != 1 || got[0].URL != "https://example.com/a" {
		t.Errorf("got = %v, want stored list", got)
	}

	if _, ok := c.GetList(ctx, "alice|0|||"); ok {
		t.Error("GetList hit for a different key, want miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(-time.Second, logger.New("error", false)) // already expired
	ctx := context.Background()

	c.SetList(ctx, "alice|1|||", []domain.Bookmark{{Title: "a"}})
	if _, ok := c.GetList(ctx, "alice|1|||"); ok {
		t.Error("GetList hit on an expired entry, want miss")
	}

	// The expired entry remains until swept.
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 before sweep", c.Len())
	}
	if swept := c.Sweep(time.Now()); swept != 1 {
		t.Errorf("Sweep = %d, want 1", swept)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after sweep", c.Len())
	}
}

func TestCacheInvalidateUser(t *testing.T) {
	c := NewCache(time.Minute, logger.New("error", false))
	ctx := context.Background()

	c.SetList(ctx, "alice|1|||", []domain.Bookmark{{Title: "a"}})
	c.SetList(ctx, "alice|0|go||", []domain.Bookmark{{Title: "b"}})
	c.SetList(ctx, "bob|1|||", []domain.Bookmark{{Title: "c"}})

	c.InvalidateUser(ctx, "alice")

	if _, ok := c.GetList(ctx, "alice|1|||"); ok {
		t.Error("alice entry survived invalidation")
	}
	if _, ok := c.GetList(ctx, "alice|0|go||"); ok {
		t.Error("alice tagged entry survived invalidation")
	}
	if _, ok := c.GetList(ctx, "bob|1|||"); !ok {
		t.Error("bob entry was invalidated, want kept")
	}
}

func TestCacheSweepKeepsFreshEntries(t *testing.T) {
	c := NewCache(time.Hour, logger.New("error", false))
	ctx := context.Background()

	c.SetList(ctx, "alice|1|||", []domain.Bookmark{{Title: "a"}})
	if swept := c.Sweep(time.Now()); swept != 0 {
		t.Errorf("Sweep = %d, want 0 for fresh entries", swept)
	}
	if _, ok := c.GetList(ctx, "alice|1|||"); !ok {
		t.Error("fresh entry missing after sweep")
	}
}
