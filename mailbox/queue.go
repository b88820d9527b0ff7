// Package mailbox provides the FIFO queues used to hold signals waiting for
// delivery.
package mailbox

import (
	"sync"
)

type node[T any] struct {
	value T
	next  *node[T]
}

// Queue defines a queue implementation safe for concurrent-use
// across go-routines, which provides ability to peek, pop and push
// new items. Queue uses lock to guarantee safe concurrent use.
type Queue[T any] struct {
	bm    sync.Mutex
	head  *node[T]
	tail  *node[T]
	total int
}

// NewQueue returns a new instance of an unbounded queue.
// Items will be queued endlessly.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push adds the item to the back of the queue.
//
// Push can be safely called from multiple goroutines.
func (bq *Queue[T]) Push(value T) {
	n := &node[T]{value: value}

	bq.bm.Lock()
	defer bq.bm.Unlock()

	bq.total++
	if bq.tail == nil {
		bq.head, bq.tail = n, n
		return
	}

	bq.tail.next = n
	bq.tail = n
}

// Pop removes the item from the front of the queue. The returned
// bool is false when the queue was empty.
//
// Pop can be safely called from multiple goroutines.
func (bq *Queue[T]) Pop() (T, bool) {
	bq.bm.Lock()
	defer bq.bm.Unlock()

	head := bq.head
	if head == nil {
		var zero T
		return zero, false
	}

	bq.head = head.next
	if bq.head == nil {
		bq.tail = nil
	}
	bq.total--

	head.next = nil
	return head.value, true
}

// Peek returns the item at the front of the queue without removing it.
func (bq *Queue[T]) Peek() (T, bool) {
	bq.bm.Lock()
	defer bq.bm.Unlock()

	if bq.head == nil {
		var zero T
		return zero, false
	}
	return bq.head.value, true
}

// Len returns the current total of items in the queue.
func (bq *Queue[T]) Len() int {
	bq.bm.Lock()
	defer bq.bm.Unlock()
	return bq.total
}

// Empty returns true/false if the queue is empty.
func (bq *Queue[T]) Empty() bool {
	return bq.Len() == 0
}

// Clear drops all items held by the queue.
func (bq *Queue[T]) Clear() {
	bq.bm.Lock()
	defer bq.bm.Unlock()
	bq.head, bq.tail = nil, nil
	bq.total = 0
}
