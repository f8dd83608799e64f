package parwork

import (
	"sync"
)

// Event is a boolean flag that is raised when something happens and stays
// raised until a waiter consumes it. There is no fairness guarantee over
// which waiter wins.
//
// The zero value is an unraised event ready to use.
type Event struct {
	mu   sync.Mutex
	cond *sync.Cond
	set  bool
}

func (e *Event) init() {
	if e.cond == nil {
		e.cond = sync.NewCond(&e.mu)
	}
}

// Raises the event and wakes one waiter.
func (e *Event) Signal() {
	e.mu.Lock()
	e.init()
	e.set = true
	e.mu.Unlock()
	e.cond.Signal()
}

// Raises the event and wakes all waiters. Only one of them consumes it.
func (e *Event) Broadcast() {
	e.mu.Lock()
	e.init()
	e.set = true
	e.mu.Unlock()
	e.cond.Broadcast()
}

// Blocks until the event is raised, then lowers it again.
func (e *Event) Wait() {
	e.mu.Lock()
	e.init()
	for !e.set {
		e.cond.Wait()
	}
	e.set = false
	e.mu.Unlock()
}
