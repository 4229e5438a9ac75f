// Package scheduler runs background maintenance loops.
package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/diigo-mcp/internal/logger"
)

// Sweepable is a store that can reclaim expired entries.
type Sweepable interface {
	Sweep(now time.Time) int
}

// Janitor periodically sweeps expired entries out of a cache.
type Janitor struct {
	cache    Sweepable
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewJanitor creates a janitor sweeping cache every interval.
func NewJanitor(cache Sweepable, log logger.Logger, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		cache:    cache,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep in a background goroutine.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if swept := j.cache.Sweep(time.Now()); swept > 0 {
					j.logger.Debug("swept expired cache entries",
						logger.Int("count", swept))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopCh)
}
