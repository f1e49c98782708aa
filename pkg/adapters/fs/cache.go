package fs

import (
	"sync"
	"time"
)

// cacheEntry holds the last bytes read for a key and the mtime they belong to.
type cacheEntry struct {
	Data         []byte
	LastModified time.Time
}

// cache avoids re-reading collection files whose mtime has not changed.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]*cacheEntry)}
}

// Get returns a copy of the cached bytes if the entry exists and is fresh.
func (c *cache) Get(key string, currentMtime time.Time) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !entry.LastModified.Equal(currentMtime) {
		return nil, false
	}
	return append([]byte(nil), entry.Data...), true
}

// Set stores a private copy of data for key.
func (c *cache) Set(key string, data []byte, mtime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		Data:         append([]byte(nil), data...),
		LastModified: mtime,
	}
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
