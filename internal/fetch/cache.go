package fetch

import (
	"sync"
	"time"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Cache is an in-memory response cache keyed by normalized URL. Entries
// expire after a TTL; the cache lives only for the process lifetime.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	page      model.FetchedPage
	expiresAt time.Time
}

// NewCache creates a Cache with the given TTL (default 24h).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns a cached page and whether it was found and fresh.
func (c *Cache) Get(url string) (*model.FetchedPage, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, url)
		c.mu.Unlock()
		return nil, false
	}
	page := entry.page
	return &page, true
}

// Set stores a page, evicting any expired entries it encounters.
func (c *Cache) Set(url string, page model.FetchedPage) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.entries[url] = cacheEntry{page: page, expiresAt: now.Add(c.ttl)}
}

// Len returns the number of cached entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
