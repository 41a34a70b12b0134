package util

import (
	"container/list"
	"sync"
)

type (
	// LRUCache is a bounded cache that evicts its least recently used
	// entry once full
	LRUCache[T any] struct {
		cache   map[string]*list.Element
		lru     *list.List
		maxSize int
		mu      sync.Mutex
	}

	cacheEntry[T any] struct {
		value T
		key   string
	}
)

func NewLRUCache[T any](maxSize int) *LRUCache[T] {
	return &LRUCache[T]{
		cache:   map[string]*list.Element{},
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached value for key, marking it as recently used
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		var zero T
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry[T]).value, true
}

// Put adds or replaces the cached value for key, evicting the least recently
// used entry when the cache is full
func (c *LRUCache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		elem.Value.(*cacheEntry[T]).value = value
		c.lru.MoveToFront(elem)
		return
	}

	entry := &cacheEntry[T]{key: key, value: value}
	c.cache[key] = c.lru.PushFront(entry)

	if c.lru.Len() > c.maxSize {
		c.evictLast()
	}
}

// Delete removes the cached value for key if present
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.Remove(elem)
		delete(c.cache, key)
	}
}

// Keys returns the cached keys from most to least recently used
func (c *LRUCache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := make([]string, 0, c.lru.Len())
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		res = append(res, elem.Value.(*cacheEntry[T]).key)
	}
	return res
}

// Len returns the number of cached entries
func (c *LRUCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *LRUCache[T]) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		backEntry := back.Value.(*cacheEntry[T])
		delete(c.cache, backEntry.key)
	}
}
