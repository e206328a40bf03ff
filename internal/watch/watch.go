// Package watch implements a single-value broadcast cell: the Go
// equivalent of a watch channel. Only the latest published value is
// retained; subscribers never block publishers.
package watch

import "sync"

// Cell holds the latest value of T and lets any number of readers observe
// updates without blocking the writer.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	ch    chan struct{}
}

// NewCell returns a Cell seeded with initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, ch: make(chan struct{})}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Publish stores v and wakes every current subscriber. Never blocks.
func (c *Cell[T]) Publish(v T) {
	c.mu.Lock()
	c.value = v
	closed := c.ch
	c.ch = make(chan struct{})
	c.mu.Unlock()
	close(closed)
}

// Subscribe returns the current value and a channel that is closed the next
// time Publish is called. Callers loop: read value, do work, <-notify,
// Subscribe again.
func (c *Cell[T]) Subscribe() (T, <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.ch
}
