package util

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a least-recently-used cache bounded by entry count. It is safe for
// concurrent use. An LRU with a capacity below one stores nothing.
type LRU[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

// NewLRU returns a new LRU cache with the given capacity.
func NewLRU[K comparable, V any](capacity int64) *LRU[K, V] {
	if capacity < 1 {
		return &LRU[K, V]{}
	}
	cache, err := lru.New[K, V](int(capacity))
	if err != nil {
		return &LRU[K, V]{}
	}
	return &LRU[K, V]{cache: cache}
}

// Put adds or updates the value for key, evicting the least recently used
// entry if the cache is full.
func (l *LRU[K, V]) Put(key K, value V) {
	if l.cache == nil {
		return
	}
	l.cache.Add(key, value)
}

// Get returns the value for key and marks it recently used.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	if l.cache == nil {
		var v V
		return v, false
	}
	return l.cache.Get(key)
}

// Delete removes key from the cache if present.
func (l *LRU[K, V]) Delete(key K) {
	if l.cache == nil {
		return
	}
	l.cache.Remove(key)
}

// Len returns the number of entries in the cache.
func (l *LRU[K, V]) Len() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.Len()
}
