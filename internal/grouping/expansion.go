package grouping

import "sync"

// Expansion tracks which tree nodes are open. Toggle is the only mutation
// besides the one-shot auto-expansion on activation.
type Expansion struct {
	mu        sync.Mutex
	open      map[string]struct{}
	activated bool
}

func NewExpansion() *Expansion {
	return &Expansion{open: map[string]struct{}{}}
}

func (e *Expansion) Toggle(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.open[key]; ok {
		delete(e.open, key)
		return
	}
	e.open[key] = struct{}{}
}

func (e *Expansion) IsExpanded(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.open[key]
	return ok
}

// Activate expands every top-level key, once per activation of grouped mode.
// It returns false when the activation already happened.
func (e *Expansion) Activate(topLevelKeys []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activated {
		return false
	}
	for _, k := range topLevelKeys {
		e.open[k] = struct{}{}
	}
	e.activated = true
	return true
}

// Deactivate re-arms the auto-expansion for the next activation.
func (e *Expansion) Deactivate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activated = false
}

// Keys returns the open keys in no particular order.
func (e *Expansion) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]string, 0, len(e.open))
	for k := range e.open {
		keys = append(keys, k)
	}
	return keys
}
