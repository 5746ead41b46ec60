// Package htable implements a string-keyed hash table with separate chaining.
//
// Keys are hashed with 64-bit FNV-1a and reduced modulo the current slot
// count. The slot count only ever grows, and never past the item capacity.
// A Table is meant to have a single writer; distinct tables may be used from
// different goroutines concurrently.
package htable

import (
	"errors"
	"reflect"
	"sync/atomic"
)

const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211

	// MaxKeyLen is the longest key a table accepts.
	MaxKeyLen = 128
)

var (
	// ErrFull is returned when the table already holds its capacity of items.
	ErrFull = errors.New("htable: table is full")
	// ErrKeyTooLong is returned for keys longer than MaxKeyLen bytes.
	ErrKeyTooLong = errors.New("htable: key too long")
	// ErrNullValue is returned when inserting a nil value.
	ErrNullValue = errors.New("htable: null value")
	// ErrKeyNotFound is returned when the key is absent.
	ErrKeyNotFound = errors.New("htable: key not found")
	// ErrKeyAlreadyExists is returned when the key is present already.
	ErrKeyAlreadyExists = errors.New("htable: key already exists")
)

// AppendMode decides what Append does when a key exists in both tables.
type AppendMode int

const (
	// Skip keeps the destination's value.
	Skip AppendMode = iota
	// Override replaces the destination's value and drops the old one.
	Override
	// DupErr aborts before touching the destination.
	DupErr
)

type entry[V any] struct {
	key   string
	value V
	next  *entry[V]
}

// Table maps string keys to values of type V.
type Table[V any] struct {
	slots    []*entry[V]
	count    atomic.Int64
	capacity int
	drop     func(V)
	fold     bool
}

// Option configures a Table.
type Option func(*options)

type options struct {
	fold bool
}

// FoldCase makes key comparison and hashing ASCII case-insensitive.
// The spelling of the first insert is the one kept.
func FoldCase() Option {
	return func(o *options) { o.fold = true }
}

// New creates a table with slots initial chains and room for capacity items.
// drop, if non-nil, is called for values that get removed, overridden or
// released by Close.
func New[V any](slots, capacity int, drop func(V), opts ...Option) *Table[V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 1 {
		capacity = 1
	}
	if slots < 1 {
		slots = 1
	}
	if slots > capacity {
		slots = capacity
	}
	return &Table[V]{
		slots:    make([]*entry[V], slots),
		capacity: capacity,
		drop:     drop,
		fold:     o.fold,
	}
}

func (t *Table[V]) hash(key string, n int) int {
	h := uint64(fnvOffset)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if t.fold && c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint64(c)
		h *= fnvPrime
	}
	return int(h % uint64(n))
}

func (t *Table[V]) equal(a, b string) bool {
	if !t.fold {
		return a == b
	}
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (t *Table[V]) find(key string) *entry[V] {
	for e := t.slots[t.hash(key, len(t.slots))]; e != nil; e = e.next {
		if t.equal(e.key, key) {
			return e
		}
	}
	return nil
}

// Insert adds key with value. The key is copied.
func (t *Table[V]) Insert(key string, value V) error {
	if len(key) > MaxKeyLen {
		return ErrKeyTooLong
	}
	if int(t.count.Load()) >= t.capacity {
		return ErrFull
	}
	if isNil(value) {
		return ErrNullValue
	}
	if t.find(key) != nil {
		return ErrKeyAlreadyExists
	}

	t.maybeGrow()
	idx := t.hash(key, len(t.slots))
	t.slots[idx] = &entry[V]{
		key:   string(append([]byte(nil), key...)),
		value: value,
		next:  t.slots[idx],
	}
	t.count.Add(1)
	return nil
}

// maybeGrow doubles the slot count once the load factor passes 3/4.
func (t *Table[V]) maybeGrow() {
	n := len(t.slots)
	if n >= t.capacity || int(t.count.Load())+1 <= n*3/4 {
		return
	}
	next := n * 2
	if next > t.capacity {
		next = t.capacity
	}
	grown := make([]*entry[V], next)
	for _, head := range t.slots {
		for e := head; e != nil; {
			following := e.next
			idx := t.hash(e.key, next)
			e.next = grown[idx]
			grown[idx] = e
			e = following
		}
	}
	t.slots = grown
}

// Fetch returns the value stored under key.
func (t *Table[V]) Fetch(key string) (V, error) {
	if e := t.find(key); e != nil {
		return e.value, nil
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Contains reports whether key is present.
func (t *Table[V]) Contains(key string) bool {
	return t.find(key) != nil
}

// Remove unlinks key and drops its value.
func (t *Table[V]) Remove(key string) error {
	idx := t.hash(key, len(t.slots))
	var prev *entry[V]
	for e := t.slots[idx]; e != nil; e = e.next {
		if !t.equal(e.key, key) {
			prev = e
			continue
		}
		if prev == nil {
			t.slots[idx] = e.next
		} else {
			prev.next = e.next
		}
		if t.drop != nil {
			t.drop(e.value)
		}
		t.count.Add(-1)
		return nil
	}
	return ErrKeyNotFound
}

// Replace stores value under key, dropping any previous value.
func (t *Table[V]) Replace(key string, value V) error {
	if isNil(value) {
		return ErrNullValue
	}
	if e := t.find(key); e != nil {
		if t.drop != nil {
			t.drop(e.value)
		}
		e.value = value
		return nil
	}
	return t.Insert(key, value)
}

// Append merges every key of src into dest according to mode.
func Append[V any](dest, src *Table[V], mode AppendMode) error {
	keys := src.Keys()

	if mode == DupErr {
		for _, k := range keys {
			if dest.Contains(k) {
				return ErrKeyAlreadyExists
			}
		}
	}

	for _, k := range keys {
		value, err := src.Fetch(k)
		if err != nil {
			return err
		}
		switch mode {
		case Skip:
			if dest.Contains(k) {
				continue
			}
		case Override:
			if dest.Contains(k) {
				if err := dest.Replace(k, value); err != nil {
					return err
				}
				continue
			}
		}
		if err := dest.Insert(k, value); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns a snapshot of all keys in slot order, then chain order.
func (t *Table[V]) Keys() []string {
	keys := make([]string, 0, t.Len())
	for _, head := range t.slots {
		for e := head; e != nil; e = e.next {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Range calls fn for each entry in Keys order until fn returns false.
func (t *Table[V]) Range(fn func(key string, value V) bool) {
	for _, head := range t.slots {
		for e := head; e != nil; e = e.next {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}

// Len returns the number of items.
func (t *Table[V]) Len() int { return int(t.count.Load()) }

// Cap returns the item capacity.
func (t *Table[V]) Cap() int { return t.capacity }

// Slots returns the current slot count.
func (t *Table[V]) Slots() int { return len(t.slots) }

// Close drops every value and empties the table. The slot count is kept.
func (t *Table[V]) Close() {
	for i, head := range t.slots {
		for e := head; e != nil; e = e.next {
			if t.drop != nil {
				t.drop(e.value)
			}
		}
		t.slots[i] = nil
	}
	t.count.Store(0)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
