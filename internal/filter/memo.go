package filter

import (
	"slices"
	"sync"
)

// Keyed is a filter state that can identify itself by value.
type Keyed interface {
	Key() string
}

// Memo caches the last pipeline result for one (collection version, filter)
// pair. Callers bump the version whenever the collection changes.
type Memo[T any, F Keyed] struct {
	mu      sync.Mutex
	run     func([]T, F) []T
	valid   bool
	version uint64
	key     string
	result  []T
}

func NewMemo[T any, F Keyed](run func([]T, F) []T) *Memo[T, F] {
	return &Memo[T, F]{run: run}
}

// Get returns a copy of the cached result, so callers may sort or trim it
// freely.
func (m *Memo[T, F]) Get(items []T, version uint64, f F) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := f.Key()
	if m.valid && m.version == version && m.key == key {
		return slices.Clone(m.result)
	}
	m.result = m.run(items, f)
	m.version, m.key, m.valid = version, key, true
	return slices.Clone(m.result)
}
