package rxkit

import (
	"container/heap"
	"sync"
	"time"
)

// VirtualScheduler implements the Scheduler interface over a virtual clock
// which only moves when told to. Scheduled actions run synchronously on
// the goroutine advancing the clock, which makes timed pipelines fully
// deterministic under test.
type VirtualScheduler struct {
	sm    sync.Mutex
	now   time.Time
	seq   uint64
	tasks taskQueue
}

// NewVirtualScheduler returns a new VirtualScheduler whose clock starts at
// start.
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{now: start}
}

// Now returns the current virtual time.
func (v *VirtualScheduler) Now() time.Time {
	v.sm.Lock()
	defer v.sm.Unlock()
	return v.now
}

// ScheduleAfter implements the Scheduler interface. A negative d is
// treated as zero.
func (v *VirtualScheduler) ScheduleAfter(d time.Duration, action func()) CancelToken {
	return v.schedule(normalizeDelay(d), 0, action)
}

// ScheduleEvery implements the Scheduler interface. The first run happens
// one period from now. A non-positive period is raised to a millisecond.
func (v *VirtualScheduler) ScheduleEvery(period time.Duration, action func()) CancelToken {
	period = normalizePeriod(period)
	return v.schedule(period, period, action)
}

// Pending returns the number of scheduled actions which are not cancelled.
func (v *VirtualScheduler) Pending() int {
	v.sm.Lock()
	defer v.sm.Unlock()
	return v.tasks.live()
}

// Advance moves the clock forward by d, running every action due until
// then in time order, including actions scheduled by those actions while
// they fall within the window.
func (v *VirtualScheduler) Advance(d time.Duration) {
	v.AdvanceTo(v.Now().Add(normalizeDelay(d)))
}

// AdvanceTo moves the clock forward to target as Advance does. A target
// before the current time only runs actions already due.
func (v *VirtualScheduler) AdvanceTo(target time.Time) {
	for {
		v.sm.Lock()
		next := v.tasks.peek()
		if next == nil || next.at.After(target) {
			if target.After(v.now) {
				v.now = target
			}
			v.sm.Unlock()
			return
		}

		heap.Pop(&v.tasks)
		if next.at.After(v.now) {
			v.now = next.at
		}
		if next.period > 0 {
			v.requeue(next)
		}
		v.sm.Unlock()

		if !next.cancelled.Load() {
			next.action()
		}
	}
}

// Flush advances the clock from one one-off action to the next until none
// is left, taking at most limit steps. Periodic actions run whenever they
// fall due along the way. It returns false if limit was reached first.
func (v *VirtualScheduler) Flush(limit int) bool {
	for i := 0; i < limit; i++ {
		v.sm.Lock()
		var earliest *task
		for _, t := range v.tasks {
			if t.period > 0 || t.cancelled.Load() {
				continue
			}
			if earliest == nil || t.at.Before(earliest.at) {
				earliest = t
			}
		}
		v.sm.Unlock()

		if earliest == nil {
			return true
		}
		v.AdvanceTo(earliest.at)
	}
	return false
}

func (v *VirtualScheduler) schedule(d time.Duration, period time.Duration, action func()) *task {
	v.sm.Lock()
	defer v.sm.Unlock()

	v.seq++
	t := &task{at: v.now.Add(d), seq: v.seq, period: period, action: action}
	heap.Push(&v.tasks, t)
	return t
}

// requeue must be called with sm held.
func (v *VirtualScheduler) requeue(t *task) {
	v.seq++
	t.at = t.at.Add(t.period)
	t.seq = v.seq
	heap.Push(&v.tasks, t)
}
