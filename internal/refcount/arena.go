package refcount

import "sync"

// Arena owns a set of handles for the lifetime of one connection and releases
// them all at once when closed.
type Arena struct {
	mu     sync.Mutex
	items  []Releaser
	closed bool
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{items: make([]Releaser, 0, 8)}
}

// Track hands one reference of r to the arena. Tracking on a closed arena
// releases r immediately.
func (a *Arena) Track(r Releaser) {
	if r == nil {
		return
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		r.Release()
		return
	}
	a.items = append(a.items, r)
	a.mu.Unlock()
}

// Len returns the number of tracked references.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Close releases every tracked reference in reverse tracking order.
// Subsequent calls do nothing.
func (a *Arena) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	items := a.items
	a.items = nil
	a.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Release()
	}
}
