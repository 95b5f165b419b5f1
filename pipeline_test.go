package polysoup

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTask_VisitsEveryItemOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8, 64} {
		data := make([]int, 37)
		for i := range data {
			data[i] = i
		}

		visits := make([]int32, len(data))
		task(workers, data, func(i int, item int) {
			assert.Equal(t, i, item, "workers=%d", workers)
			atomic.AddInt32(&visits[i], 1)
		})

		for i, n := range visits {
			assert.EqualValues(t, 1, n, "workers=%d: item %d", workers, i)
		}
	}
}

func TestTask_Empty(t *testing.T) {
	called := false
	task(4, []int{}, func(int, int) { called = true })
	assert.False(t, called, "task called fn on empty data")
}
