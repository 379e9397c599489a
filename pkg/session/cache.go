package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixkit/p4session/internal/logger"
)

// NeverExpires marks a session the server reported as needing no
// login for the rest of the process lifetime. time.Time subtraction
// saturates, so arithmetic against it stays safe.
var NeverExpires = time.Unix(1<<62, 0)

// Status is the outcome of one login status query. A zero ExpiresAt
// with Authenticated set means the session is valid but must not be
// cached.
type Status struct {
	Authenticated bool
	ExpiresAt     time.Time
}

// CacheStats is a point-in-time snapshot of cache effectiveness.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Cache is the process-wide login cache, keyed by user name. A cached
// expiry instant lets repeated login checks skip the server entirely
// while the ticket is comfortably within its lifetime.
//
// The lookup path is check-then-act: a read-locked fast path for live
// entries, then a write-locked slow path that re-checks, evicts stale
// entries and queries the server while still holding the lock. Running
// the query under the write lock is what guarantees concurrent checks
// for the same user produce exactly one server query and one cache
// write.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an empty login cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]time.Time)}
}

// live reports whether a cached expiry still clears the safety margin.
func live(expiresAt time.Time, margin time.Duration, now time.Time) bool {
	return expiresAt.Sub(now)-margin > 0
}

// Check reports whether user holds a valid session, consulting the
// cache first and falling back to query. margin is subtracted from
// cached lifetimes so a session about to lapse mid-operation counts
// as expired. When useCache is false the lookup always queries, but a
// cacheable result is still written.
//
// query runs with the cache's write lock held; it must not re-enter
// the cache.
func (c *Cache) Check(ctx context.Context, user string, margin time.Duration, useCache bool, query func(ctx context.Context) (Status, error)) (bool, error) {
	now := time.Now()

	if useCache {
		c.mu.RLock()
		expiresAt, ok := c.entries[user]
		c.mu.RUnlock()
		if ok && live(expiresAt, margin, now) {
			c.hits.Add(1)
			logger.Debug("session cache hit", logger.User(user), logger.ExpiresAt(expiresAt))
			return true, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if useCache {
		// Double-check: another caller may have refreshed the entry
		// while we waited for the write lock.
		if expiresAt, ok := c.entries[user]; ok {
			if live(expiresAt, margin, now) {
				c.hits.Add(1)
				logger.Debug("session cache hit", logger.User(user), logger.ExpiresAt(expiresAt))
				return true, nil
			}
			delete(c.entries, user)
			logger.Debug("session cache entry expired", logger.User(user), logger.ExpiresAt(expiresAt))
		}
	}

	c.misses.Add(1)
	status, err := query(ctx)
	if err != nil {
		return false, err
	}

	if status.Authenticated && !status.ExpiresAt.IsZero() {
		c.entries[user] = status.ExpiresAt
		logger.Debug("session cached", logger.User(user), logger.ExpiresAt(status.ExpiresAt))
	}
	return status.Authenticated, nil
}

// Invalidate drops the cached session for user, forcing the next
// check to query the server. Used on logout and credential rotation.
func (c *Cache) Invalidate(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[user]; ok {
		delete(c.entries, user)
		logger.Debug("session cache invalidated", logger.User(user))
	}
}

// InvalidateAll drops every cached session.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]time.Time)
}

// Size returns the number of cached sessions.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of hit and miss counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.Size(),
	}
}

// defaultCache is the shared process-wide cache used when no explicit
// cache is injected.
var defaultCache = NewCache()

// DefaultCache returns the shared process-wide login cache.
func DefaultCache() *Cache { return defaultCache }

// InvalidateUser drops user from the shared cache. External events
// (rotated credentials, revoked access) call this to force the next
// login check back to the server.
func InvalidateUser(user string) {
	defaultCache.Invalidate(user)
}
