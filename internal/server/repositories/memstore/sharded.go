// Package memstore provides the lock-striped map behind the in-memory
// repositories. Each key hashes to one shard guarded by its own RWMutex, so
// writers on different keys never contend.
package memstore

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultShardPow = 5
	maxShardPow     = 10
)

type shard[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

// Sharded is a concurrent map of string keys to values of type V.
// Values are stored by value; callers that store pointers must not mutate
// them outside Update.
type Sharded[V any] struct {
	shards []shard[V]
	mask   uint64
}

// New creates a map with 2^shardPow shards, capped at 1024.
func New[V any](shardPow uint8) *Sharded[V] {
	if shardPow > maxShardPow {
		shardPow = maxShardPow
	}
	n := 1 << shardPow
	s := &Sharded[V]{mask: uint64(n - 1), shards: make([]shard[V], n)}
	for i := range s.shards {
		s.shards[i].m = make(map[string]V)
	}
	return s
}

func (s *Sharded[V]) shardFor(key string) *shard[V] {
	return &s.shards[xxhash.Sum64String(key)&s.mask]
}

// Get returns the value stored under key.
func (s *Sharded[V]) Get(key string) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.m[key]
	return v, ok
}

// Update runs fn under the shard's write lock. fn receives the current value
// (zero and false when absent) and returns the value to store and whether to
// store it. Update returns whatever fn returned.
func (s *Sharded[V]) Update(key string, fn func(cur V, ok bool) (V, bool)) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cur, ok := sh.m[key]
	next, store := fn(cur, ok)
	if store {
		sh.m[key] = next
	}
	return next, store
}

// Iter visits every value until fn returns false. Each shard is read-locked
// while it is visited, so fn must not call back into s.
func (s *Sharded[V]) Iter(fn func(key string, v V) bool) {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k, v := range sh.m {
			if !fn(k, v) {
				sh.mu.RUnlock()
				return
			}
		}
		sh.mu.RUnlock()
	}
}

// Len counts stored values.
func (s *Sharded[V]) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.m)
		sh.mu.RUnlock()
	}
	return n
}
