package ingest

import (
	"sync"
	"time"
)

type packetKey struct {
	from uint32
	id   uint64
}

// seenCache remembers packet keys for a fixed window. Expired entries are
// swept on insert, so no background goroutine is needed.
type seenCache struct {
	mu        sync.Mutex
	entries   map[packetKey]time.Time
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newSeenCache(window time.Duration, now func() time.Time) *seenCache {
	if now == nil {
		now = time.Now
	}

	return &seenCache{
		entries: make(map[packetKey]time.Time),
		window:  window,
		now:     now,
	}
}

// Add records key and reports whether it was new. A zero window disables
// deduplication.
func (c *seenCache) Add(key packetKey) bool {
	if c.window <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= c.window {
		for k, exp := range c.entries {
			if !now.Before(exp) {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}

	if exp, ok := c.entries[key]; ok && now.Before(exp) {
		return false
	}
	c.entries[key] = now.Add(c.window)

	return true
}

func (c *seenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
