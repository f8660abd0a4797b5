package cache

import "time"

// LayeredCache fronts a disk cache with a memory cache. Responses are read
// from memory while hot, survive on disk across runs, and writes land in
// both layers.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a layered cache persisting to dir. Both layers
// share the same TTL.
func NewLayeredCache(dir string, ttl time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(ttl),
		disk:   NewDiskCache(dir, ttl),
	}
}

// Get checks the memory layer first, then disk. Disk hits are promoted to
// memory so repeated lookups of the same response stay hot.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	c.memory.Delete(key)
	c.disk.Delete(key)
	return nil
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	c.memory.Clear()
	c.disk.Clear()
	return nil
}
