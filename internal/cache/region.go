// Package cache provides the second-level cache region the session load path
// consults before touching a loader. Entries hold disassembled entity state
// (raw column maps), never live instances, so cached state can hydrate fresh
// instances in any session.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies one cached entity state entry.
type Key struct {
	Entity string
	ID     any
}

// Region is an LRU-bounded, read-only cache region: entries are written once
// after a load and never updated. Safe for concurrent use across sessions.
type Region struct {
	name    string
	entries *lru.Cache[Key, map[string]any]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewRegion constructs a region holding at most capacity entries.
func NewRegion(name string, capacity int) (*Region, error) {
	if name == "" {
		return nil, fmt.Errorf("cache region requires a name")
	}
	entries, err := lru.New[Key, map[string]any](capacity)
	if err != nil {
		return nil, fmt.Errorf("create region %s: %w", name, err)
	}
	return &Region{name: name, entries: entries}, nil
}

// Name returns the region name.
func (r *Region) Name() string { return r.name }

// Get returns a copy of the cached state for key, if present.
func (r *Region) Get(key Key) (map[string]any, bool) {
	state, ok := r.entries.Get(key)
	if !ok {
		r.misses.Add(1)
		return nil, false
	}
	r.hits.Add(1)
	return cloneState(state), true
}

// Put stores disassembled state under key. Under the read-only strategy the
// first write wins; later writes for the same key are ignored.
func (r *Region) Put(key Key, state map[string]any) {
	if state == nil {
		return
	}
	r.entries.PeekOrAdd(key, cloneState(state))
}

// Len reports the number of resident entries.
func (r *Region) Len() int { return r.entries.Len() }

// Stats returns cumulative hit and miss counts.
func (r *Region) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}

func cloneState(state map[string]any) map[string]any {
	cpy := make(map[string]any, len(state))
	for k, v := range state {
		cpy[k] = v
	}
	return cpy
}
