package parwork

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Loads one queue while its worker is blocked and verifies that the other
// worker steals and executes part of the backlog.
func TestSteal(t *testing.T) {
	exec := New(2)
	defer exec.Close()

	var started, gate Event
	exec.submitTo(0, func() {
		started.Signal()
		gate.Wait()
	})
	started.Wait()

	// Worker 0 is now inside the gate job, so the backlog accumulates.
	var gated atomic.Bool
	gated.Store(true)
	var ranWhileGated atomic.Int64
	done := NewCounter[int](0)
	for i := 0; i < 16; i++ {
		done.Inc()
		exec.submitTo(0, func() {
			if gated.Load() {
				ranWhileGated.Add(1)
			}
			done.DecSignal()
		})
	}

	// Wake worker 1; after the nudge job it finds its own queue empty and
	// turns to stealing.
	done.Inc()
	exec.submitTo(1, func() {
		done.DecSignal()
	})

	// The stolen half executes while worker 0 is still blocked.
	assert.Eventually(t, func() bool {
		return ranWhileGated.Load() >= 8
	}, 5*time.Second, time.Millisecond)

	gated.Store(false)
	gate.Signal()
	done.Wait()

	assert.GreaterOrEqual(t, exec.steals.Load(), uint64(1))
	assert.GreaterOrEqual(t, exec.stolen.Load(), uint64(8))
}

// A backlog below the steal threshold stays with its owner.
func TestNoStealBelowThreshold(t *testing.T) {
	exec := New(2)
	defer exec.Close()

	var started, gate Event
	exec.submitTo(0, func() {
		started.Signal()
		gate.Wait()
	})
	started.Wait()

	for i := 0; i < defaultStealThreshold-1; i++ {
		exec.submitTo(0, func() {})
	}

	done := NewCounter[int](0)
	done.Inc()
	exec.submitTo(1, func() {
		done.DecSignal()
	})
	done.Wait()

	assert.Equal(t, uint64(0), exec.steals.Load())
	gate.Signal()
}

func TestStealThresholdOption(t *testing.T) {
	exec := New(2, WithStealThreshold(2))
	assert.Equal(t, 2, exec.stealThreshold)
	exec.Close()

	assert.Panics(t, func() {
		New(2, WithStealThreshold(1))
	})
}
