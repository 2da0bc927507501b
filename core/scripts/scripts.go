// Package scripts caches Lua script bodies by their SHA1 digest so the
// host can refer to them by hash.
package scripts

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
)

type entry struct {
	code []byte
	refs int
}

// Cache is a reference-counted script store. Storing the same body twice
// takes two references; the body is evicted when the last one is dropped.
type Cache struct {
	scripts map[string]*entry
	mu      sync.Mutex
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{scripts: make(map[string]*entry)}
}

// Hash returns the lowercase hex SHA1 of code.
func Hash(code []byte) string {
	sum := sha1.Sum(code)
	return hex.EncodeToString(sum[:])
}

// Add stores code and returns its hash.
func (c *Cache) Add(code []byte) string {
	hash := Hash(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.scripts[hash]; ok {
		e.refs++
		return hash
	}
	c.scripts[hash] = &entry{code: append([]byte(nil), code...), refs: 1}
	return hash
}

// Get returns the body stored under hash.
func (c *Cache) Get(hash string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.scripts[hash]
	if !ok {
		return nil, false
	}
	return e.code, true
}

// Remove drops one reference to hash. Unknown hashes are ignored.
func (c *Cache) Remove(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.scripts[hash]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(c.scripts, hash)
	}
}

// Len returns the number of distinct scripts held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scripts)
}
