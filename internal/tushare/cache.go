package tushare

import (
	"context"
	"sync"
	"time"

	"tushare-mcp/pkg/model"
)

// DefaultCachedAPIs are reference interfaces whose answers change at most
// once a day. Sector scans ask for them repeatedly.
var DefaultCachedAPIs = []string{"index_classify", "index_member_all", "trade_cal", "stock_basic", "daily_basic"}

type cacheEntry struct {
	table   *model.Table
	expires time.Time
}

// Cached wraps a Querier with an in-memory TTL cache for selected
// interfaces. Other interfaces pass straight through.
type Cached struct {
	inner Querier
	ttl   time.Duration
	apis  map[string]bool
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCached creates a caching wrapper. A ttl of zero disables caching.
func NewCached(inner Querier, ttl time.Duration, apis []string) *Cached {
	set := make(map[string]bool, len(apis))
	for _, a := range apis {
		set[a] = true
	}
	return &Cached{
		inner: inner,
		ttl:   ttl,
		apis:  set,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// Query serves req from the cache when possible
func (c *Cached) Query(ctx context.Context, req Request) (*model.Table, error) {
	if c.ttl <= 0 || !c.apis[req.API] {
		return c.inner.Query(ctx, req)
	}
	key, err := requestKey(req)
	if err != nil {
		return c.inner.Query(ctx, req)
	}

	c.mu.Lock()
	if e, ok := c.cache[key]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return copyTable(e.table), nil
	}
	c.mu.Unlock()

	t, err := c.inner.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	// empty answers are usually a date the provider has not published yet
	if t.Len() > 0 {
		now := c.now()
		c.mu.Lock()
		// keys carry dates, so stale ones are rarely asked for again
		c.purgeLocked(now)
		c.cache[key] = cacheEntry{table: t, expires: now.Add(c.ttl)}
		c.mu.Unlock()
	}
	return copyTable(t), nil
}

// purgeLocked drops expired entries; c.mu must be held
func (c *Cached) purgeLocked(now time.Time) {
	for k, e := range c.cache {
		if !now.Before(e.expires) {
			delete(c.cache, k)
		}
	}
}

func copyTable(t *model.Table) *model.Table {
	return &model.Table{
		Fields: t.Fields,
		Items:  append([][]any(nil), t.Items...),
	}
}
