package quantum

import (
	"container/list"
	"sync"
)

// EmbeddingCache is a content-addressed cache of embeddings with optional
// least-recently-used eviction. Entries are immutable once stored, so a
// reader always holds a complete value even if the entry is evicted from
// the cache afterward. Safe for concurrent use.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int // 0 = unbounded
	entries  map[string]*list.Element
	order    *list.List // Front = most recently used

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	hash      string
	embedding Embedding
}

// NewEmbeddingCache creates a cache bounded to capacity entries.
// A capacity of zero disables eviction.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached embedding for a content hash, if present.
func (c *EmbeddingCache) Get(hash string) (Embedding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[hash]
	if !ok {
		c.misses++
		return Embedding{}, false
	}

	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).embedding, true
}

// Put stores an embedding under its content hash. The first writer wins:
// inserting a key that already exists is an idempotent no-op, which keeps
// concurrent identical computations from clobbering each other.
func (c *EmbeddingCache) Put(hash string, embedding Embedding) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.entries[hash]; exists {
		c.order.MoveToFront(elem)
		return
	}

	c.entries[hash] = c.order.PushFront(&cacheEntry{hash: hash, embedding: embedding})

	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).hash)
		}
	}
}

// Len returns the current entry count.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cumulative hit and miss counts.
func (c *EmbeddingCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
