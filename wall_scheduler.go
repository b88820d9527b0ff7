package rxkit

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/juju/clock"
)

// WallConfig configures a WallScheduler.
type WallConfig struct {
	// Clock is the source of time and timers, clock.WallClock if nil.
	Clock clock.Clock

	// Logs receives failures of scheduled actions, DrainLog if nil.
	Logs Logs
}

func (w *WallConfig) init() {
	if w.Clock == nil {
		w.Clock = clock.WallClock
	}
	if w.Logs == nil {
		w.Logs = DrainLog{}
	}
}

// WallScheduler implements the Scheduler interface over a clock.Clock.
// Actions run one at a time on a single goroutine owned by the scheduler,
// which lives until Close is called.
type WallScheduler struct {
	config WallConfig
	wake   chan struct{}
	stop   chan struct{}
	closer sync.Once

	sm     sync.Mutex
	seq    uint64
	closed bool
	tasks  taskQueue
	timer  clock.Timer
}

// NewWallScheduler returns a new WallScheduler and starts its goroutine.
func NewWallScheduler(config WallConfig) *WallScheduler {
	config.init()

	ws := &WallScheduler{
		config: config,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go ws.loop()
	return ws
}

// Now returns the time of the underlying clock.
func (ws *WallScheduler) Now() time.Time {
	return ws.config.Clock.Now()
}

// ScheduleAfter implements the Scheduler interface. A negative d is
// treated as zero.
func (ws *WallScheduler) ScheduleAfter(d time.Duration, action func()) CancelToken {
	return ws.schedule(normalizeDelay(d), 0, action)
}

// ScheduleEvery implements the Scheduler interface. Runs are spaced from
// the first target time, so a slow action does not shift later runs.
func (ws *WallScheduler) ScheduleEvery(period time.Duration, action func()) CancelToken {
	period = normalizePeriod(period)
	return ws.schedule(period, period, action)
}

// Pending returns the number of scheduled actions which are not cancelled.
func (ws *WallScheduler) Pending() int {
	ws.sm.Lock()
	defer ws.sm.Unlock()
	return ws.tasks.live()
}

// Close stops the scheduler. Pending actions never run and actions
// scheduled afterwards are dropped. An action already running finishes.
func (ws *WallScheduler) Close() {
	ws.closer.Do(func() {
		ws.sm.Lock()
		ws.closed = true
		for _, t := range ws.tasks {
			t.Cancel()
		}
		ws.tasks = nil
		ws.sm.Unlock()

		close(ws.stop)
	})
}

func (ws *WallScheduler) schedule(d time.Duration, period time.Duration, action func()) *task {
	ws.sm.Lock()
	ws.seq++
	t := &task{at: ws.config.Clock.Now().Add(d), seq: ws.seq, period: period, action: action}
	if ws.closed {
		ws.sm.Unlock()
		t.Cancel()
		return t
	}
	heap.Push(&ws.tasks, t)
	ws.sm.Unlock()

	select {
	case ws.wake <- struct{}{}:
	default:
	}
	return t
}

func (ws *WallScheduler) loop() {
	for {
		due, wait := ws.next()
		if due != nil {
			ws.run(due)
			continue
		}

		select {
		case <-ws.stop:
			ws.sm.Lock()
			if ws.timer != nil {
				ws.timer.Stop()
			}
			ws.sm.Unlock()
			return
		case <-ws.wake:
		case <-wait:
		}
	}
}

// next pops the earliest task if it is due, otherwise arms the timer for
// it and returns the channel to wait on, nil when nothing is scheduled.
func (ws *WallScheduler) next() (*task, <-chan time.Time) {
	ws.sm.Lock()
	defer ws.sm.Unlock()

	head := ws.tasks.peek()
	if head == nil {
		return nil, nil
	}

	now := ws.config.Clock.Now()
	if !head.at.After(now) {
		heap.Pop(&ws.tasks)
		if head.period > 0 {
			ws.seq++
			head.at = head.at.Add(head.period)
			head.seq = ws.seq
			heap.Push(&ws.tasks, head)
		}
		return head, nil
	}

	d := head.at.Sub(now)
	if ws.timer == nil {
		ws.timer = ws.config.Clock.NewTimer(d)
	} else {
		if !ws.timer.Stop() {
			select {
			case <-ws.timer.Chan():
			default:
			}
		}
		ws.timer.Reset(d)
	}
	return nil, ws.timer.Chan()
}

func (ws *WallScheduler) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			LogMsg("scheduled action panicked").
				String("panic", fmt.Sprint(r)).
				Time("at", t.at).
				Write(ERROR, ws.config.Logs)
		}
	}()

	if !t.cancelled.Load() {
		t.action()
	}
}
