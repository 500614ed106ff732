package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repliq/repliq/internal/polyval"
)

func TestPushDrainOrderPreserved(t *testing.T) {
	q := New()
	assert.True(t, q.IsEmpty())

	q.Push(polyval.Int32(1))
	q.Push(polyval.Int32(2))
	q.Push(polyval.Int32(3))
	assert.Equal(t, 3, q.Size())

	drained := q.DrainAll()
	assert.Len(t, drained, 3)
	for i, v := range drained {
		assert.Equal(t, int32(i+1), v.AsInt32())
	}
	assert.True(t, q.IsEmpty())
}

func TestDrainAllIsDestructive(t *testing.T) {
	q := New()
	q.Push(polyval.Int32(1))
	first := q.DrainAll()
	assert.Len(t, first, 1)

	second := q.DrainAll()
	assert.Empty(t, second)
}

func TestConcurrentPushDrainKeepsAllItems(t *testing.T) {
	q := New()
	const n = 2000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(polyval.Int32(int32(i)))
		}
	}()

	var drained []polyval.Value
	for len(drained) < n {
		drained = append(drained, q.DrainAll()...)
	}
	wg.Wait()
	assert.Len(t, drained, n)
}
