package parallel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1001} {
		seen := make([]int, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, n := range seen {
			assert.Equal(t, 1, n, "item %d of %d", i, items)
		}
	}
}

func TestParallelizeWorkersIndices(t *testing.T) {
	var mu sync.Mutex
	workers := map[int]bool{}
	total := 0
	ParallelizeWorkers(10, 3, func(worker, start, end int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Less(t, worker, 3)
		workers[worker] = true
		total += end - start
	})
	assert.Equal(t, 10, total)
	assert.Len(t, workers, 3)
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
	})
	assert.Equal(t, 1, calls)

	ParallelizeWithThreshold(0, 10, func(start, end int) {
		t.Fatal("fn must not run for zero items")
	})
}
