package celltree

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachChunk_CoversEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 3, 8, 100} {
		for _, n := range []int{0, 1, 2, 7, 64, 1001} {
			hits := make([]int32, n)
			forEachChunk(n, workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				assert.Equal(t, int32(1), h, "workers=%d n=%d index %d", workers, n, i)
			}
		}
	}
}

func TestForEach_CoversEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 16} {
		n := 500
		hits := make([]int32, n)
		forEach(n, workers, func(i int) {
			atomic.AddInt32(&hits[i], 1)
		})
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "workers=%d index %d", workers, i)
		}
	}
}

func TestForEach_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	forEach(200, 3, func(int) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		inFlight.Add(-1)
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestForEach_Empty(t *testing.T) {
	called := false
	forEach(0, 4, func(int) { called = true })
	assert.False(t, called)
}
