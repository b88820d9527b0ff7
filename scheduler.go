package rxkit

import (
	"container/heap"
	"sync/atomic"
	"time"
)

// task is a scheduled action. Tasks are ordered by their target time and,
// for equal times, by the order they were scheduled in.
type task struct {
	at        time.Time
	seq       uint64
	period    time.Duration
	action    func()
	cancelled atomic.Bool
}

// Cancel implements the CancelToken interface. Cancelled tasks stay queued
// and are dropped when they reach the head of the queue.
func (t *task) Cancel() {
	t.cancelled.Store(true)
}

func (t *task) before(other *task) bool {
	if t.at.Equal(other.at) {
		return t.seq < other.seq
	}
	return t.at.Before(other.at)
}

// taskQueue is a min-heap of tasks.
type taskQueue []*task

func (q taskQueue) Len() int           { return len(q) }
func (q taskQueue) Less(i, j int) bool { return q[i].before(q[j]) }
func (q taskQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x interface{}) {
	*q = append(*q, x.(*task))
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// peek returns the earliest live task, discarding cancelled ones on the way.
func (q *taskQueue) peek() *task {
	for q.Len() > 0 {
		head := (*q)[0]
		if !head.cancelled.Load() {
			return head
		}
		heap.Pop(q)
	}
	return nil
}

// live returns the number of tasks not cancelled.
func (q taskQueue) live() int {
	var total int
	for _, t := range q {
		if !t.cancelled.Load() {
			total++
		}
	}
	return total
}

// minPeriod is used for periodic tasks given a non-positive period.
const minPeriod = time.Millisecond

func normalizeDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func normalizePeriod(period time.Duration) time.Duration {
	if period <= 0 {
		return minPeriod
	}
	return period
}
