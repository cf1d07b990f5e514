// Package session keeps transient game state in memory, one slot per key.
//
// Every slot has its own mutex. Callers Lock a key, inspect or change the slot
// and Unlock it again, so check-then-act sequences on one key are serialized
// while different keys never contend. A slot may carry an expiry timer; the
// timer runs its callback under the same key lock and only if the slot still
// holds the value the timer was armed for.
package session

import (
	"sync"
	"time"
)

// Table maps keys to at most one live value each
type Table[K comparable, V any] struct {
	mu    sync.Mutex
	slots map[K]*slot[V]
}

type slot[V any] struct {
	mu       sync.Mutex
	refs     int // guarded by Table.mu
	present  bool
	value    V
	gen      uint64
	timer    *time.Timer
	onExpire func(V)
}

// NewTable creates an empty table
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{slots: make(map[K]*slot[V])}
}

// Entry is a locked slot. It must be released with Unlock.
type Entry[K comparable, V any] struct {
	table *Table[K, V]
	key   K
	slot  *slot[V]
}

// Lock blocks until the slot for key is free and returns it locked
func (t *Table[K, V]) Lock(key K) *Entry[K, V] {
	t.mu.Lock()
	s, ok := t.slots[key]
	if !ok {
		s = &slot[V]{}
		t.slots[key] = s
	}
	s.refs++
	t.mu.Unlock()

	s.mu.Lock()
	return &Entry[K, V]{table: t, key: key, slot: s}
}

// Len returns the number of live values
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, s := range t.slots {
		// Slots with refs > 0 may be mid-change; count only what is settled
		if s.refs == 0 && s.present {
			n++
		}
	}
	return n
}

// Has reports whether key holds a live value
func (t *Table[K, V]) Has(key K) bool {
	e := t.Lock(key)
	defer e.Unlock()
	return e.slot.present
}

// Unlock releases the slot. Empty slots nobody waits for are dropped.
func (e *Entry[K, V]) Unlock() {
	e.slot.mu.Unlock()

	t := e.table
	t.mu.Lock()
	e.slot.refs--
	if e.slot.refs == 0 && !e.slot.present {
		delete(t.slots, e.key)
	}
	t.mu.Unlock()
}

// Value returns the live value, if any
func (e *Entry[K, V]) Value() (V, bool) {
	return e.slot.value, e.slot.present
}

// Put stores v and arms the expiry timer. onExpire runs with the key locked
// when ttl elapses without Touch, Delete or another Put.
func (e *Entry[K, V]) Put(v V, ttl time.Duration, onExpire func(V)) {
	e.stopTimer()
	e.slot.present = true
	e.slot.value = v
	e.slot.onExpire = onExpire
	e.arm(ttl)
}

// Touch restarts the expiry timer of the live value
func (e *Entry[K, V]) Touch(ttl time.Duration) {
	if !e.slot.present {
		return
	}
	e.stopTimer()
	e.arm(ttl)
}

// Delete removes the value and cancels its timer
func (e *Entry[K, V]) Delete() {
	e.stopTimer()
	var zero V
	e.slot.present = false
	e.slot.value = zero
	e.slot.onExpire = nil
}

func (e *Entry[K, V]) stopTimer() {
	if e.slot.timer != nil {
		e.slot.timer.Stop()
		e.slot.timer = nil
	}
	// A timer that already fired is waiting on the lock; the new generation turns it into a no-op
	e.slot.gen++
}

func (e *Entry[K, V]) arm(ttl time.Duration) {
	if ttl <= 0 || e.slot.onExpire == nil {
		return
	}
	gen := e.slot.gen
	t, key := e.table, e.key
	e.slot.timer = time.AfterFunc(ttl, func() {
		t.expire(key, gen)
	})
}

func (t *Table[K, V]) expire(key K, gen uint64) {
	e := t.Lock(key)
	defer e.Unlock()

	if !e.slot.present || e.slot.gen != gen {
		return
	}

	value, onExpire := e.slot.value, e.slot.onExpire
	e.slot.timer = nil
	e.Delete()
	onExpire(value)
}
