package parwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFO(t *testing.T) {
	q := newQueue()

	var order []int
	for i := 0; i < 4; i++ {
		i := i
		q.push(func() {
			order = append(order, i)
		})
	}

	for {
		q.mu.Lock()
		j := q.tryPop()
		q.mu.Unlock()
		if j == nil {
			break
		}
		j.fn()
	}
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestTryPopEmpty(t *testing.T) {
	q := newQueue()
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Nil(t, q.tryPop())
}

func TestStealHalf(t *testing.T) {
	src := newQueue()
	dst := newQueue()

	for i := 0; i < 16; i++ {
		src.push(func() {})
	}

	src.mu.Lock()
	dst.mu.Lock()
	moved := src.stealHalf(dst, defaultStealThreshold)
	src.mu.Unlock()
	dst.mu.Unlock()

	assert.Equal(t, 8, moved)
	assert.Equal(t, 8, src.depth())
	assert.Equal(t, 8, dst.depth())
}

func TestStealHalfThreshold(t *testing.T) {
	src := newQueue()
	dst := newQueue()

	for i := 0; i < defaultStealThreshold-1; i++ {
		src.push(func() {})
	}

	src.mu.Lock()
	dst.mu.Lock()
	moved := src.stealHalf(dst, defaultStealThreshold)
	src.mu.Unlock()
	dst.mu.Unlock()

	assert.Equal(t, 0, moved)
	assert.Equal(t, defaultStealThreshold-1, src.depth())
	assert.Equal(t, 0, dst.depth())
}

func TestStealHalfTakesNewest(t *testing.T) {
	src := newQueue()
	dst := newQueue()

	var ran []int
	for i := 0; i < 8; i++ {
		i := i
		src.push(func() {
			ran = append(ran, i)
		})
	}

	src.mu.Lock()
	dst.mu.Lock()
	src.stealHalf(dst, defaultStealThreshold)
	// The thief receives the back half, in order.
	for _, j := range dst.jobs {
		j.fn()
	}
	src.mu.Unlock()
	dst.mu.Unlock()

	assert.Equal(t, []int{4, 5, 6, 7}, ran)
}

func TestDiscard(t *testing.T) {
	q := newQueue()
	for i := 0; i < 5; i++ {
		q.push(func() {
			t.Error("discarded job was executed")
		})
	}

	assert.Equal(t, 5, q.discard())
	assert.Equal(t, 0, q.depth())
}
