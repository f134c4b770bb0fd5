// Package store keeps the single client-side copy of an entity list.
//
// All changes go through Dispatch, which runs the pure Reduce function.
// Conflicts between an optimistic/server update and a slower re-fetch are
// resolved last-write-wins on the server UpdatedAt timestamp: an incoming
// record older than the one held is dropped.
package store

import (
	"sync"
	"time"
)

// Meta reads the identity and server timestamp of an entity.
type Meta[T any] struct {
	ID        func(T) uint
	UpdatedAt func(T) time.Time
}

type Action[T any] interface {
	apply(state []T, meta Meta[T]) []T
}

// Upsert inserts or replaces one entity, unless the held copy is newer.
type Upsert[T any] struct {
	Item T
}

// Replace merges a full re-fetch. FetchedAt is when the request was sent;
// held entities missing from Items survive only if they changed after it.
type Replace[T any] struct {
	Items     []T
	FetchedAt time.Time
}

// Remove drops one entity by id.
type Remove[T any] struct {
	ID uint
}

func (a Upsert[T]) apply(state []T, meta Meta[T]) []T {
	id := meta.ID(a.Item)
	out := make([]T, len(state), len(state)+1)
	copy(out, state)
	for i, held := range out {
		if meta.ID(held) != id {
			continue
		}
		if meta.UpdatedAt(a.Item).Before(meta.UpdatedAt(held)) {
			return out
		}
		out[i] = a.Item
		return out
	}
	return append(out, a.Item)
}

func (a Replace[T]) apply(state []T, meta Meta[T]) []T {
	held := make(map[uint]T, len(state))
	for _, it := range state {
		held[meta.ID(it)] = it
	}

	out := make([]T, 0, len(a.Items))
	seen := make(map[uint]struct{}, len(a.Items))
	for _, incoming := range a.Items {
		id := meta.ID(incoming)
		seen[id] = struct{}{}
		if h, ok := held[id]; ok && meta.UpdatedAt(incoming).Before(meta.UpdatedAt(h)) {
			out = append(out, h)
			continue
		}
		out = append(out, incoming)
	}
	for _, h := range state {
		if _, ok := seen[meta.ID(h)]; ok {
			continue
		}
		if meta.UpdatedAt(h).After(a.FetchedAt) {
			out = append(out, h)
		}
	}
	return out
}

func (a Remove[T]) apply(state []T, meta Meta[T]) []T {
	out := make([]T, 0, len(state))
	for _, it := range state {
		if meta.ID(it) != a.ID {
			out = append(out, it)
		}
	}
	return out
}

// Reduce returns the next state without touching the current one.
func Reduce[T any](state []T, action Action[T], meta Meta[T]) []T {
	return action.apply(state, meta)
}

type Store[T any] struct {
	mu      sync.RWMutex
	meta    Meta[T]
	items   []T
	version uint64
}

func New[T any](meta Meta[T]) *Store[T] {
	return &Store[T]{meta: meta}
}

func (s *Store[T]) Dispatch(action Action[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = Reduce(s.items, action, s.meta)
	s.version++
}

// Snapshot returns the current items and the version they belong to.
func (s *Store[T]) Snapshot() ([]T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out, s.version
}

func (s *Store[T]) Get(id uint) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if s.meta.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
