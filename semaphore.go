package parwork

import (
	"sync"
)

// Semaphore is a counting resource semaphore.
//
// The zero value is a semaphore with no resources; NewSemaphore creates one
// with an initial count.
type Semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// Creates a semaphore holding n resources.
func NewSemaphore(n int) *Semaphore {
	return &Semaphore{count: n}
}

func (s *Semaphore) init() {
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
}

// Blocks until a resource is available, then takes it.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	s.init()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// Returns one resource and wakes one waiter.
func (s *Semaphore) Release() {
	s.ReleaseN(1)
}

// Returns n resources. A single waiter is woken per resource returned.
func (s *Semaphore) ReleaseN(n int) {
	s.mu.Lock()
	s.init()
	s.count += n
	s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.cond.Signal()
	}
}
