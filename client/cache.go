package client

import "sync"

type cacheEntry struct {
	data []byte
	tag  string
}

// TagCache is a read-through cache keyed by request path+query, where every
// entry carries the resource tag it belongs to. Invalidating a tag drops
// all entries filed under it, so a single item update clears every cached
// item list regardless of its filter combination.
type TagCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewTagCache() *TagCache {
	return &TagCache{entries: make(map[string]cacheEntry)}
}

func (c *TagCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

func (c *TagCache) Set(key string, data []byte, tag string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, tag: tag}
	c.mu.Unlock()
}

func (c *TagCache) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		for _, tag := range tags {
			if entry.tag == tag {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Clear drops everything, e.g. on logout or tenant switch.
func (c *TagCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *TagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
