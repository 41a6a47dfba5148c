package webhook

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelregistry/webhooks/pkg/logger"
)

// CacheInfo is a point-in-time snapshot of the cache's internal state, for
// diagnostics and health endpoints.
type CacheInfo struct {
	WebhookCount    int
	LastRefresh     time.Time
	RefreshInterval time.Duration
	Running         bool
	HasStore        bool
}

// snapshot is the immutable value swapped atomically on each refresh.
type snapshot struct {
	webhooks []Webhook
	at       time.Time
}

// Cache is a thread-safe, periodically-refreshed read view of the webhook
// store. Reads never touch the store directly; they serve from the most
// recently refreshed snapshot, swapped atomically so readers never observe a
// partially-updated list.
type Cache struct {
	refreshInterval time.Duration
	log             *slog.Logger

	mu    sync.Mutex // guards store, started, cancel
	store Store

	snap atomic.Pointer[snapshot]

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewCache constructs a Cache with the given refresh interval. The cache
// holds no store and serves an empty snapshot until SetStore installs one;
// Start does not install a store. A zero or negative interval falls back to DefaultConfig's default.
func NewCache(refreshInterval time.Duration, log *slog.Logger) *Cache {
	if refreshInterval <= 0 {
		refreshInterval = DefaultConfig().CacheRefreshInterval
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Cache{refreshInterval: refreshInterval, log: log}
	c.snap.Store(&snapshot{})
	return c
}

// SetStore installs store as the cache's backing store and immediately
// performs a synchronous refresh from it. Passing the same store instance
// already installed is a no-op.
func (c *Cache) SetStore(ctx context.Context, store Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == store {
		return nil
	}
	c.store = store
	return c.refreshLocked(ctx)
}

// Start launches the background refresh loop. Calling Start on an
// already-started cache is a no-op.
func (c *Cache) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.started = true

	go c.refreshLoop(loopCtx)

	c.log.Debug("started webhook cache",
		logger.Component("webhook.cache"),
		slog.Duration("refresh_interval", c.refreshInterval))
}

// Stop halts the background refresh loop and waits for it to exit.
func (c *Cache) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.log.Debug("stopped webhook cache", logger.Component("webhook.cache"))
	return nil
}

// GetWebhooks returns a copy of every webhook in the current snapshot,
// regardless of status.
func (c *Cache) GetWebhooks() []Webhook {
	s := c.snap.Load()
	out := make([]Webhook, len(s.webhooks))
	copy(out, s.webhooks)
	return out
}

// GetActiveForEvent returns every cached webhook that should trigger for
// eventType, filtered at read time rather than from a precomputed index.
func (c *Cache) GetActiveForEvent(eventType string) []Webhook {
	s := c.snap.Load()
	matches := make([]Webhook, 0, len(s.webhooks))
	for _, w := range s.webhooks {
		if w.ShouldTrigger(eventType) {
			matches = append(matches, w)
		}
	}
	return matches
}

// Refresh forces an immediate synchronous refresh from the installed store.
// It is a no-op if no store has been set.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return c.refreshLocked(ctx)
}

// Info returns a snapshot of the cache's current diagnostics.
func (c *Cache) Info() CacheInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snap.Load()
	return CacheInfo{
		WebhookCount:    len(s.webhooks),
		LastRefresh:     s.at,
		RefreshInterval: c.refreshInterval,
		Running:         c.started,
		HasStore:        c.store != nil,
	}
}

func (c *Cache) refreshLoop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.store != nil {
				if err := c.refreshLocked(ctx); err != nil {
					c.log.Warn("webhook cache refresh failed",
						logger.Component("webhook.cache.refresher"), logger.Error(err))
				}
			}
			c.mu.Unlock()
		}
	}
}

// refreshLocked pulls every page of webhooks from c.store and atomically
// swaps the snapshot. Callers must hold c.mu.
func (c *Cache) refreshLocked(ctx context.Context) error {
	var all []Webhook
	pageToken := ""
	for {
		page, next, err := c.store.ListWebhooks(ctx, 0, pageToken)
		if err != nil {
			return err
		}
		all = append(all, page...)
		if next == "" {
			break
		}
		pageToken = next
	}

	c.snap.Store(&snapshot{webhooks: all, at: time.Now()})
	c.log.Debug("webhook cache refreshed",
		logger.Component("webhook.cache.refresher"),
		slog.Int("webhook_count", len(all)))
	return nil
}
