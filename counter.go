package parwork

import (
	"sync"
)

// Integer is the set of value types a Counter can count with.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Counter is a synchronized counter with a wake-up predicate. The usual use
// is joining on a batch of jobs: initialize the counter to the batch size,
// have every job DecSignal on completion, and Wait for it to reach zero.
//
// The zero value is a counter at zero with the "equals zero" predicate.
type Counter[T Integer] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value T
	pred  func(T) bool
}

// Creates a counter with an initial value and the default "equals zero"
// predicate.
func NewCounter[T Integer](initial T) *Counter[T] {
	return &Counter[T]{value: initial}
}

// Creates a counter whose notify operations wake waiters whenever pred
// holds for the new value.
func NewCounterPred[T Integer](initial T, pred func(T) bool) *Counter[T] {
	return &Counter[T]{value: initial, pred: pred}
}

func (c *Counter[T]) init() {
	if c.cond == nil {
		c.cond = sync.NewCond(&c.mu)
	}
	if c.pred == nil {
		c.pred = func(value T) bool { return value == 0 }
	}
}

// Returns the current value.
func (c *Counter[T]) Value() T {
	c.mu.Lock()
	value := c.value
	c.mu.Unlock()
	return value
}

// Increments the counter without notifying anyone.
func (c *Counter[T]) Inc() {
	c.mu.Lock()
	c.value++
	c.mu.Unlock()
}

// Decrements the counter without notifying anyone.
func (c *Counter[T]) Dec() {
	c.mu.Lock()
	c.value--
	c.mu.Unlock()
}

// Increments the counter and wakes one waiter if the predicate holds for
// the new value.
func (c *Counter[T]) IncSignal() {
	c.notify(1, false)
}

// Decrements the counter and wakes one waiter if the predicate holds for
// the new value.
func (c *Counter[T]) DecSignal() {
	c.notify(-1, false)
}

// Increments the counter and wakes all waiters if the predicate holds for
// the new value.
func (c *Counter[T]) IncBroadcast() {
	c.notify(1, true)
}

// Decrements the counter and wakes all waiters if the predicate holds for
// the new value.
func (c *Counter[T]) DecBroadcast() {
	c.notify(-1, true)
}

func (c *Counter[T]) notify(delta int, all bool) {
	c.mu.Lock()
	c.init()
	if delta > 0 {
		c.value++
	} else {
		c.value--
	}
	hit := c.pred(c.value)
	c.mu.Unlock()
	if !hit {
		return
	}
	if all {
		c.cond.Broadcast()
	} else {
		c.cond.Signal()
	}
}

// Blocks until the predicate holds for the counter's value.
func (c *Counter[T]) Wait() {
	c.mu.Lock()
	c.init()
	for !c.pred(c.value) {
		c.cond.Wait()
	}
	c.mu.Unlock()
}
