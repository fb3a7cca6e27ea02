// Package locks holds the per-key lock registries that give memoized calls
// their single-flight behavior: one caller computes while the others wait and
// then read what it stored.
//
// Keys are spread over a fixed number of shards by xxhash so unrelated keys
// rarely contend on the registry itself. Locks are created on first use and
// live until Reset.
package locks

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/semaphore"
)

const shardCount = 64

type shard[T any] struct {
	mu sync.Mutex
	m  map[string]*T
}

type registry[T any] struct {
	shards [shardCount]shard[T]
}

func (r *registry[T]) get(key string, create func() *T) *T {
	sh := &r.shards[xxhash.Sum64String(key)%shardCount]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if v, ok := sh.m[key]; ok {
		return v
	}
	if sh.m == nil {
		sh.m = make(map[string]*T)
	}
	v := create()
	sh.m[key] = v
	return v
}

func (r *registry[T]) len() int {
	n := 0
	for i := range r.shards {
		sh := &r.shards[i]
		sh.mu.Lock()
		n += len(sh.m)
		sh.mu.Unlock()
	}
	return n
}

func (r *registry[T]) reset() {
	for i := range r.shards {
		sh := &r.shards[i]
		sh.mu.Lock()
		sh.m = nil
		sh.mu.Unlock()
	}
}

// Mutexes serves blocking callers. The zero value is ready to use.
type Mutexes struct {
	r registry[sync.Mutex]
}

// Lock blocks until the lock for key is held and returns its release func.
func (m *Mutexes) Lock(key string) (unlock func()) {
	mu := m.r.get(key, func() *sync.Mutex { return new(sync.Mutex) })
	mu.Lock()
	return mu.Unlock
}

// Len is the number of keys that ever acquired a lock since the last Reset.
func (m *Mutexes) Len() int { return m.r.len() }

// Reset forgets every lock. It is only safe when no lock is held or being
// acquired: a holder keeps the old lock while new callers get a fresh one
// for the same key, so both run at once.
func (m *Mutexes) Reset() { m.r.reset() }

// Semaphores serves context-aware callers. Acquisition stops waiting when the
// context is done. The zero value is ready to use.
type Semaphores struct {
	r registry[semaphore.Weighted]
}

// Acquire waits for the lock on key. On success the returned func releases
// it; on failure the error is the context's.
func (s *Semaphores) Acquire(ctx context.Context, key string) (release func(), err error) {
	sem := s.r.get(key, func() *semaphore.Weighted { return semaphore.NewWeighted(1) })
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

func (s *Semaphores) Len() int { return s.r.len() }

// Reset has the same caveat as Mutexes.Reset: call it only when idle.
func (s *Semaphores) Reset() { s.r.reset() }
