// Package locks serializes operations on the same logical resource
// (one ship id) while letting unrelated operations run concurrently.
package locks

import "sync"

type lockEntry struct {
	mu      sync.Mutex
	waiters int
}

// Registry hands out one mutex per string key, created lazily and removed
// again once the last holder releases, so the map never grows without bound.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*lockEntry)}
}

// RunExclusive runs fn while holding the mutex for key. The mutex is
// released and the registry entry cleaned up even when fn returns an error;
// the error is passed through unchanged.
//
// Not reentrant: calling RunExclusive for the same key from inside fn
// deadlocks. Operations under one key must stay flat.
func (r *Registry) RunExclusive(key string, fn func() error) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &lockEntry{}
		r.entries[key] = e
	}
	e.waiters++
	r.mu.Unlock()

	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		r.mu.Lock()
		e.waiters--
		if e.waiters == 0 {
			delete(r.entries, key)
		}
		r.mu.Unlock()
	}()

	return fn()
}

// Size reports how many keys currently hold a mutex entry.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
