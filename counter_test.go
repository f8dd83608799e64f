package parwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterJoin(t *testing.T) {
	exec := New(4)
	defer exec.Close()

	done := NewCounter[int](1000)
	var total int
	var mu Mutex
	for i := 0; i < 1000; i++ {
		exec.Submit(func() {
			mu.Lock()
			total++
			mu.Unlock()
			done.DecSignal()
		})
	}
	done.Wait()

	assert.Equal(t, 1000, total)
	assert.Equal(t, 0, done.Value())
}

func TestCounterPredicate(t *testing.T) {
	c := NewCounterPred[int](0, func(value int) bool {
		return value == 3
	})

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()

	c.IncSignal()
	c.IncSignal()
	c.IncBroadcast()
	<-done
	assert.Equal(t, 3, c.Value())
}

func TestCounterPlainOps(t *testing.T) {
	var c Counter[int32]
	c.Inc()
	c.Inc()
	c.Dec()
	assert.Equal(t, int32(1), c.Value())
}
