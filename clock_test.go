package statebox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockStrictlyIncreasing(t *testing.T) {
	c := &SystemClock{}
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		next := c.Now()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestSystemClockConcurrentStampsUnique(t *testing.T) {
	c := &SystemClock{}
	const workers, perWorker = 8, 200
	stamps := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				stamps <- c.Now()
			}
		}()
	}
	wg.Wait()
	close(stamps)
	seen := make(map[int64]bool, workers*perWorker)
	for s := range stamps {
		assert.False(t, seen[s])
		seen[s] = true
	}
}

func TestLogicalClockTicks(t *testing.T) {
	c := &LogicalClock{}
	assert.Equal(t, int64(1), c.Now())
	assert.Equal(t, int64(2), c.Now())
	assert.Equal(t, int64(3), c.Now())
}
