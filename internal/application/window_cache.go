package application

import (
	"strings"
	"sync"
	"time"
)

// windowCache stores recently expanded recurring rule occurrences to avoid
// re-running the expander for identical display queries while the rule set
// remains unchanged. Rule writes invalidate the whole cache; commit gates
// never read from it.
type windowCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]windowCacheEntry
}

type windowCacheEntry struct {
	windows   []UnavailabilityWindow
	expiresAt time.Time
}

func newWindowCache(ttl time.Duration, maxEntries int, now func() time.Time) *windowCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &windowCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]windowCacheEntry),
	}
}

func (c *windowCache) Get(key string) ([]UnavailabilityWindow, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneWindows(entry.windows), true
}

func (c *windowCache) Store(key string, windows []UnavailabilityWindow) {
	if c == nil {
		return
	}
	cloned := cloneWindows(windows)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = windowCacheEntry{windows: cloned, expiresAt: expiry}
}

func (c *windowCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]windowCacheEntry)
	c.mu.Unlock()
}

func (c *windowCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *windowCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneWindows(windows []UnavailabilityWindow) []UnavailabilityWindow {
	if len(windows) == 0 {
		return nil
	}
	out := make([]UnavailabilityWindow, len(windows))
	copy(out, windows)
	return out
}

func buildWindowCacheKey(scope Scope, resourceID string, from, to time.Time) string {
	builder := strings.Builder{}
	builder.WriteString(scope.AgencyID)
	builder.WriteString("|")
	builder.WriteString(resourceID)
	builder.WriteString("|")
	builder.WriteString(from.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(to.UTC().Format(time.RFC3339Nano))
	return builder.String()
}
