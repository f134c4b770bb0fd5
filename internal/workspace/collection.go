// Package workspace is the consumer side of the REST contract: it keeps the
// client copy of jobs and contacts, the list filters and view modes, and runs
// the multi-step create and enrichment flows.
package workspace

import (
	"sync"

	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/store"
	"github.com/justsurfingit/career-tracker/internal/viewstate"
)

// Collection holds one entity list with its filter state, view mode and
// grouped-view expansion.
type Collection[T any, F filter.Keyed] struct {
	Store     *store.Store[T]
	View      *viewstate.Machine[T]
	Expansion *grouping.Expansion

	mu      sync.Mutex
	memo    *filter.Memo[T, F]
	levels  [3]grouping.Level[T]
	filter  F
	grouped bool
}

func newCollection[T any, F filter.Keyed](meta store.Meta[T], run func([]T, F) []T, levels [3]grouping.Level[T]) *Collection[T, F] {
	return &Collection[T, F]{
		Store:     store.New(meta),
		View:      viewstate.NewMachine[T](),
		Expansion: grouping.NewExpansion(),
		memo:      filter.NewMemo(run),
		levels:    levels,
	}
}

func (c *Collection[T, F]) Filter() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Collection[T, F]) SetFilter(f F) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// Visible is the filtered, sorted list. It is recomputed only when the
// store or the filter changed since the last call.
func (c *Collection[T, F]) Visible() []T {
	items, version := c.Store.Snapshot()
	return c.memo.Get(items, version, c.Filter())
}

// SetGrouped switches between the flat list and the category tree. Turning
// it on expands every top-level node once.
func (c *Collection[T, F]) SetGrouped(on bool) {
	c.mu.Lock()
	c.grouped = on
	c.mu.Unlock()
	if !on {
		c.Expansion.Deactivate()
		return
	}
	c.Expansion.Activate(c.Tree().TopLevelKeys())
}

func (c *Collection[T, F]) Grouped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grouped
}

// Tree groups the visible items.
func (c *Collection[T, F]) Tree() *grouping.Tree[T] {
	return grouping.Build(c.Visible(), c.levels)
}
