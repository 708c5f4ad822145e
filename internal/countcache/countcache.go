package countcache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DEFAULT_TTL = time.Second * 30

type entry struct {
	count      int64
	computedAt time.Time
}

// Cache holds unread counts per (recipient, type) with a fixed TTL. It is a
// performance optimization only: mutations that change read state must call
// Invalidate so stale counts never outlive the change.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DEFAULT_TTL
	}

	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached count for the key and whether it is still fresh.
func (c *Cache) Get(recipientID uuid.UUID, notificationType string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key(recipientID, notificationType)]
	if !ok || time.Since(e.computedAt) >= c.ttl {
		return 0, false
	}

	return e.count, true
}

func (c *Cache) Set(recipientID uuid.UUID, notificationType string, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key(recipientID, notificationType)] = entry{
		count:      count,
		computedAt: time.Now(),
	}
}

// Invalidate drops every cached count for the recipient, across all type keys.
func (c *Cache) Invalidate(recipientID uuid.UUID) {
	prefix := recipientID.String() + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

func key(recipientID uuid.UUID, notificationType string) string {
	if notificationType == "" {
		notificationType = "all"
	}
	return recipientID.String() + ":" + notificationType
}
