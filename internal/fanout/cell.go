package fanout

import (
	"context"
	"sync"
)

// Cell is a single-slot holding cell for the most recent value. Writers
// overwrite, never queue; readers either grab the latest value or wait for
// the next write. Safe for any number of concurrent readers and writers.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	filled bool
	notify chan struct{} // capacity 1; a pending token means "new value"
}

func NewCell[T any]() *Cell[T] {
	return &Cell[T]{notify: make(chan struct{}, 1)}
}

// Set stores v as the latest value. Never blocks; an undrained notification
// stays pending rather than stacking up.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.filled = true
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Get returns the latest value, if any.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.filled
}

// Next consumes the pending notification and returns the latest value,
// blocking until a Set arrives or the context ends. Values written between
// calls are dropped, not queued.
func (c *Cell[T]) Next(ctx context.Context) (T, error) {
	select {
	case <-c.notify:
		v, _ := c.Get()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Latest returns the current value when one exists, otherwise it waits like
// Next. This is the "latest or wait" read used by stream consumers joining
// mid-run.
func (c *Cell[T]) Latest(ctx context.Context) (T, error) {
	if v, ok := c.Get(); ok {
		return v, nil
	}
	return c.Next(ctx)
}
