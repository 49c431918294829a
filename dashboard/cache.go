// Package dashboard implements the coordinator-side view over assigned
// appointment requests: an in-memory cache mirroring the coordinator's
// documents, a pure filter/search/sort engine, and a session that keeps the
// cache fresh from change notifications.
package dashboard

import (
	"sync"

	"github.com/nithinshettyy/appointment-system/appointment"
)

// Cache is an in-memory mirror of one coordinator's assigned requests. It is
// replaced wholesale on every change notification; there is no partial-update
// path. A single subscription goroutine writes, HTTP handlers read.
type Cache struct {
	mu      sync.RWMutex
	records []appointment.Request
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace atomically discards the prior contents and stores a copy of the
// new sequence.
func (c *Cache) Replace(records []appointment.Request) {
	snapshot := make([]appointment.Request, len(records))
	copy(snapshot, records)

	c.mu.Lock()
	c.records = snapshot
	c.mu.Unlock()
}

// Snapshot returns a copy of the current contents in cache order.
func (c *Cache) Snapshot() []appointment.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]appointment.Request, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
