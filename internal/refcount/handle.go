// Package refcount implements shared-ownership handles with atomic reference
// counts and an optional cleanup callback run when the last owner releases.
//
// A handle starts with one owner. Every goroutine that keeps a handle beyond
// the lifetime of the goroutine that gave it to it must hold its own counted
// reference, obtained with Share before the hand-off.
package refcount

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidHandle is reported when a handle is released more often than it was shared.
	ErrInvalidHandle = errors.New("refcount: invalid handle")
	// ErrTooLarge is returned by Resize when the requested length exceeds the limit.
	ErrTooLarge = errors.New("refcount: requested size exceeds limit")
)

// Releaser is anything that can drop one reference.
type Releaser interface {
	Release() bool
}

// Handle is a reference-counted owner of a value of type T.
type Handle[T any] struct {
	mu      sync.Mutex // guards value and cleanup during Resize and final release
	refs    atomic.Int64
	value   T
	cleanup func(T)
}

// Acquire wraps value in a new handle with a reference count of one.
// cleanup may be nil.
func Acquire[T any](value T, cleanup func(T)) *Handle[T] {
	h := &Handle[T]{value: value, cleanup: cleanup}
	h.refs.Store(1)
	return h
}

// Share registers another owner and returns the same handle.
func (h *Handle[T]) Share() *Handle[T] {
	if h == nil {
		return nil
	}
	if h.refs.Add(1) <= 1 {
		// Sharing a freed handle resurrects nothing.
		h.refs.Add(-1)
		log.Warn().Err(ErrInvalidHandle).Msg("share on released handle")
		return nil
	}
	return h
}

// Release drops one reference. When the last reference goes away the cleanup
// callback runs exactly once and Release reports true.
func (h *Handle[T]) Release() bool {
	if h == nil {
		return false
	}
	n := h.refs.Add(-1)
	if n > 0 {
		return false
	}
	if n < 0 {
		h.refs.Add(1)
		log.Warn().Err(ErrInvalidHandle).Int64("refs", n).Msg("release on released handle")
		return false
	}

	h.mu.Lock()
	value, cleanup := h.value, h.cleanup
	var zero T
	h.value = zero
	h.cleanup = nil
	h.mu.Unlock()

	if cleanup != nil {
		cleanup(value)
	}
	return true
}

// Value returns the managed value. It is the zero value once released or
// when h is nil.
func (h *Handle[T]) Value() T {
	if h == nil {
		var zero T
		return zero
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Refs returns the current number of owners.
func (h *Handle[T]) Refs() int64 {
	if h == nil {
		return 0
	}
	return h.refs.Load()
}

// Release drops the reference held in *hp and clears the variable, so a
// second call through the same variable is a no-op.
func Release[T any](hp **Handle[T]) bool {
	if hp == nil || *hp == nil {
		return false
	}
	h := *hp
	*hp = nil
	return h.Release()
}

// AcquireSlice allocates a zeroed slice of length n behind a new handle.
func AcquireSlice[E any](n int, cleanup func([]E)) *Handle[[]E] {
	return Acquire(make([]E, n), cleanup)
}

// Resize moves the slice behind h to length n, keeping its contents, its
// reference count and its cleanup callback. Shrinking truncates in place.
func Resize[E any](h *Handle[[]E], n, limit int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return resizeLocked(h, n, limit)
}

// Append grows the slice behind h by src, honoring limit.
func Append[E any](h *Handle[[]E], limit int, src ...E) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := len(h.value)
	if err := resizeLocked(h, start+len(src), limit); err != nil {
		return err
	}
	copy(h.value[start:], src)
	return nil
}

func resizeLocked[E any](h *Handle[[]E], n, limit int) error {
	if limit > 0 && n > limit {
		return ErrTooLarge
	}
	if h.refs.Load() <= 0 {
		return ErrInvalidHandle
	}

	old := h.value
	if n <= cap(old) {
		h.value = old[:n]
		return nil
	}

	// Double like append does, but never past limit.
	c := cap(old) * 2
	if c < n {
		c = n
	}
	if limit > 0 && c > limit {
		c = limit
	}
	grown := make([]E, n, c)
	copy(grown, old)
	h.value = grown
	return nil
}
