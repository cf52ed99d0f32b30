// Package notify provides single-slot notification cells: a cell holds at
// most one pending item, overwritten if the consumer has not taken it yet.
package notify

import "sync"

type Cell[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
	onSet   func(T)
}

func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// OnSet registers a callback invoked on every Set, with the new value.
// The callback runs under the cell lock so observers never see a stale
// value after Set has returned.
func (c *Cell[T]) OnSet(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onSet = fn
}

// Set stores v, replacing any pending value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.present = true
	if c.onSet != nil {
		c.onSet(v)
	}
}

// Take consumes the pending value, clearing the cell.
func (c *Cell[T]) Take() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.present {
		var zero T
		return zero, false
	}

	v := c.value
	var zero T
	c.value = zero
	c.present = false
	return v, true
}

// Peek returns the pending value without consuming it.
func (c *Cell[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.value, c.present
}
