package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int
	Name string
}

func ids(items []testItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestQueue_New(t *testing.T) {
	q := New[testItem](0)
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PushPop(t *testing.T) {
	q := New[testItem](0)

	_, ok := q.Pop()
	assert.False(t, ok, "pop on empty queue")

	q.Push(testItem{ID: 1, Name: "first"}, testItem{ID: 2, Name: "second"})
	assert.Equal(t, 2, q.Len())

	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, testItem{ID: 1, Name: "first"}, first)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_LimitDropsOldest(t *testing.T) {
	q := New[testItem](3)

	assert.Equal(t, 0, q.Push(testItem{ID: 1}, testItem{ID: 2}))
	assert.Equal(t, 2, q.Push(testItem{ID: 3}, testItem{ID: 4}, testItem{ID: 5}))

	assert.Equal(t, []int{3, 4, 5}, ids(q.Drain()))
	assert.Equal(t, 2, q.Dropped())
}

func TestQueue_PushFront(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{ID: 3})
	q.PushFront(testItem{ID: 1}, testItem{ID: 2})

	assert.Equal(t, []int{1, 2, 3}, ids(q.Drain()))
}

func TestQueue_PushFrontRespectsLimit(t *testing.T) {
	q := New[testItem](2)
	q.Push(testItem{ID: 3})

	dropped := q.PushFront(testItem{ID: 1}, testItem{ID: 2})
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []int{2, 3}, ids(q.Drain()))
}

func TestQueue_ClearAndDrain(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{ID: 1}, testItem{ID: 2})

	q.Clear()
	assert.True(t, q.Empty())
	assert.Empty(t, q.Drain())

	q.Push(testItem{ID: 7})
	assert.Equal(t, []int{7}, ids(q.Drain()))
	assert.True(t, q.Empty(), "drain empties the queue")
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[testItem](0)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(testItem{ID: g*100 + i})
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 1000, q.Len())
}
