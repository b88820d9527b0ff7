package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func BenchmarkQueue_PushPop(b *testing.B) {
	b.ReportAllocs()

	q := NewQueue[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
		q.Pop()
	}
	b.StopTimer()
}

func BenchmarkQueue_PushAndPop(b *testing.B) {
	b.ReportAllocs()

	q := NewQueue[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
	}

	for i := 0; i < b.N; i++ {
		q.Pop()
	}
	b.StopTimer()
}

func TestQueue_PushPop(t *testing.T) {
	q := NewQueue[string]()

	q.Push("a")
	q.Push("b")
	assert.Equal(t, 2, q.Len())

	first, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, "a", first)

	second, _ := q.Pop()
	assert.Equal(t, "b", second)

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.True(t, q.Empty())
}

func TestQueue_Peek(t *testing.T) {
	q := NewQueue[int]()

	_, ok := q.Peek()
	assert.False(t, ok)

	q.Push(1)
	q.Push(2)

	head, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, 1, head)
	assert.Equal(t, 2, q.Len())

	v, _ := q.Pop()
	assert.Equal(t, 1, v)
	head, _ = q.Peek()
	assert.Equal(t, 2, head)
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Clear()
	assert.True(t, q.Empty())

	q.Push(3)
	v, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestQueue_ConcurrentPushKeepsEveryItem(t *testing.T) {
	q := NewQueue[int]()

	var w sync.WaitGroup
	w.Add(4)
	for g := 0; g < 4; g++ {
		go func() {
			defer w.Done()
			for i := 0; i < 250; i++ {
				q.Push(i)
			}
		}()
	}
	w.Wait()

	assert.Equal(t, 1000, q.Len())
}
