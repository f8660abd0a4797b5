// Package cache stores model responses and fetched reference documents
// between runs. Checking the same answer twice should not pay for the same
// model calls twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from the given parts. Parts are
// length-delimited before hashing so adjacent fields cannot collide.
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "aletheia:v1:" + hex.EncodeToString(h.Sum(nil))
}
