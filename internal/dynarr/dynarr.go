// Package dynarr implements a slot array that grows by doubling up to a fixed
// ceiling. Removing an item nulls its slot instead of compacting, so indices
// handed out by Push stay valid for the life of the array.
package dynarr

import "errors"

var (
	// ErrFull is returned when every slot is taken and the ceiling is reached.
	ErrFull = errors.New("dynarr: array is full")
	// ErrIndexOutOfRange is returned for an index outside the current slots.
	ErrIndexOutOfRange = errors.New("dynarr: index out of range")
	// ErrEmpty is returned by Pop on an array without occupied slots.
	ErrEmpty = errors.New("dynarr: array is empty")
)

type slot[T any] struct {
	value T
	used  bool
}

// Array is a growable slot array. It is not safe for concurrent mutation.
type Array[T any] struct {
	slots   []slot[T]
	ceiling int
	drop    func(T)
}

// New creates an array with size initial slots that may grow to ceiling slots.
// drop, if non-nil, is called for occupants that get overwritten or cleared.
func New[T any](size, ceiling int, drop func(T)) *Array[T] {
	if ceiling < 1 {
		ceiling = 1
	}
	if size < 1 {
		size = 1
	}
	if size > ceiling {
		size = ceiling
	}
	return &Array[T]{
		slots:   make([]slot[T], size),
		ceiling: ceiling,
		drop:    drop,
	}
}

// Push stores item in the first free slot and returns that slot's index.
func (a *Array[T]) Push(item T) (int, error) {
	for i := range a.slots {
		if !a.slots[i].used {
			a.slots[i] = slot[T]{value: item, used: true}
			return i, nil
		}
	}
	if !a.grow() {
		return -1, ErrFull
	}
	return a.Push(item)
}

// grow doubles the slot count, going straight to the ceiling if doubling
// would overshoot it.
func (a *Array[T]) grow() bool {
	n := len(a.slots)
	if n >= a.ceiling {
		return false
	}
	next := n * 2
	if next > a.ceiling {
		next = a.ceiling
	}
	grown := make([]slot[T], next)
	copy(grown, a.slots)
	a.slots = grown
	return true
}

// At returns the occupant of slot i and whether the slot is occupied.
func (a *Array[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(a.slots) {
		return zero, false
	}
	s := a.slots[i]
	return s.value, s.used
}

// SetAt overwrites slot i, dropping the previous occupant.
func (a *Array[T]) SetAt(i int, item T) error {
	if i < 0 || i >= len(a.slots) {
		return ErrIndexOutOfRange
	}
	if prev := a.slots[i]; prev.used && a.drop != nil {
		a.drop(prev.value)
	}
	a.slots[i] = slot[T]{value: item, used: true}
	return nil
}

// RemoveAt nulls slot i and hands its previous occupant back to the caller.
// Other slots keep their indices.
func (a *Array[T]) RemoveAt(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(a.slots) {
		return zero, ErrIndexOutOfRange
	}
	prev := a.slots[i].value
	a.slots[i] = slot[T]{}
	return prev, nil
}

// Pop removes the occupant of the highest occupied slot.
func (a *Array[T]) Pop() (T, int, error) {
	for i := len(a.slots) - 1; i >= 0; i-- {
		if !a.slots[i].used {
			continue
		}
		v, err := a.RemoveAt(i)
		return v, i, err
	}
	var zero T
	return zero, -1, ErrEmpty
}

// Len returns the current number of slots.
func (a *Array[T]) Len() int { return len(a.slots) }

// Cap returns the ceiling.
func (a *Array[T]) Cap() int { return a.ceiling }

// Count returns the number of occupied slots.
func (a *Array[T]) Count() int {
	n := 0
	for _, s := range a.slots {
		if s.used {
			n++
		}
	}
	return n
}

// Values returns the occupants in slot order.
func (a *Array[T]) Values() []T {
	out := make([]T, 0, len(a.slots))
	for _, s := range a.slots {
		if s.used {
			out = append(out, s.value)
		}
	}
	return out
}

// Clear drops and nulls every occupied slot.
func (a *Array[T]) Clear() {
	for i, s := range a.slots {
		if s.used && a.drop != nil {
			a.drop(s.value)
		}
		a.slots[i] = slot[T]{}
	}
}
