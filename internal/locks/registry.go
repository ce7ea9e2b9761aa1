// Package locks provides per-key reader/writer locks.
package locks

import "sync"

type entry struct {
	mu   sync.RWMutex
	refs int
}

// Registry hands out one RWMutex per key. Entries are created on first use
// and removed once no goroutine holds or waits on them.
type Registry[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

// NewRegistry creates an empty Registry
func NewRegistry[K comparable]() *Registry[K] {
	return &Registry[K]{entries: make(map[K]*entry)}
}

func (r *Registry[K]) acquire(key K) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{}
		r.entries[key] = e
	}
	e.refs++
	return e
}

func (r *Registry[K]) release(key K, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(r.entries, key)
	}
}

// Lock takes the write lock for key and returns its release function
func (r *Registry[K]) Lock(key K) (unlock func()) {
	e := r.acquire(key)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		r.release(key, e)
	}
}

// RLock takes the read lock for key and returns its release function
func (r *Registry[K]) RLock(key K) (unlock func()) {
	e := r.acquire(key)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		r.release(key, e)
	}
}

// Len returns the number of keys currently tracked
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
