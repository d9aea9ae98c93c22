package followdash

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/followdash/dashboard"
)

// ViewCache keeps the last loaded dashboard per user for a short TTL so
// the chart image and click requests that follow a board render reuse its
// backend fetch instead of issuing their own.
type ViewCache struct {
	mu    sync.RWMutex
	views map[string]cachedView
	ttl   time.Duration
	ctrl  *dashboard.Controller
}

type cachedView struct {
	view    *dashboard.View
	fetched time.Time
}

// NewViewCache creates a ViewCache loading through ctrl.
func NewViewCache(ctrl *dashboard.Controller, ttl time.Duration) *ViewCache {
	return &ViewCache{views: make(map[string]cachedView), ttl: ttl, ctrl: ctrl}
}

func (c *ViewCache) valid(e cachedView) bool {
	return e.view != nil && time.Since(e.fetched) < c.ttl
}

// Load always fetches a fresh view and caches it when it loaded.
func (c *ViewCache) Load(ctx context.Context, uid string) *dashboard.View {
	v := c.ctrl.Load(ctx, uid)
	c.mu.Lock()
	c.sweepLocked()
	if v.State == dashboard.Loaded {
		c.views[uid] = cachedView{view: v, fetched: time.Now()}
	} else {
		delete(c.views, uid)
	}
	c.mu.Unlock()
	return v
}

// Get returns the cached view for uid, loading it on a miss.
func (c *ViewCache) Get(ctx context.Context, uid string) *dashboard.View {
	c.mu.RLock()
	e, ok := c.views[uid]
	c.mu.RUnlock()
	if ok && c.valid(e) {
		return e.view
	}
	return c.Load(ctx, uid)
}

// Invalidate drops the cached view for uid.
func (c *ViewCache) Invalidate(uid string) {
	c.mu.Lock()
	delete(c.views, uid)
	c.mu.Unlock()
}

// sweepLocked drops expired entries. c.mu must be held.
func (c *ViewCache) sweepLocked() {
	for uid, e := range c.views {
		if !c.valid(e) {
			delete(c.views, uid)
		}
	}
}
