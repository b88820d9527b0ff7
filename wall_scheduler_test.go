package rxkit_test

import (
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokit/rxkit"
	"github.com/gokit/rxkit/internal"
	"github.com/gokit/rxkit/mocks"
)

const waitTime = time.Second

func TestWallSchedulerRunsDueActions(t *testing.T) {
	clk := testclock.NewClock(epoch)
	sched := rxkit.NewWallScheduler(rxkit.WallConfig{Clock: clk})
	defer sched.Close()

	fired := make(chan time.Time, 1)
	sched.ScheduleAfter(time.Second, func() { fired <- sched.Now() })

	require.NoError(t, clk.WaitAdvance(time.Second, waitTime, 1))

	select {
	case at := <-fired:
		assert.Equal(t, epoch.Add(time.Second), at)
	case <-time.After(waitTime):
		t.Fatal("action never ran")
	}
}

func TestWallSchedulerOrder(t *testing.T) {
	clk := testclock.NewClock(epoch)
	sched := rxkit.NewWallScheduler(rxkit.WallConfig{Clock: clk})
	defer sched.Close()

	order := make(chan string, 3)
	sched.ScheduleAfter(2*time.Second, func() { order <- "b" })
	sched.ScheduleAfter(time.Second, func() { order <- "a" })
	sched.ScheduleAfter(2*time.Second, func() { order <- "c" })

	require.NoError(t, clk.WaitAdvance(time.Second, waitTime, 1))
	assert.Equal(t, "a", <-order)

	require.NoError(t, clk.WaitAdvance(time.Second, waitTime, 1))
	assert.Equal(t, "b", <-order)
	assert.Equal(t, "c", <-order)
}

func TestWallSchedulerInterval(t *testing.T) {
	clk := testclock.NewClock(epoch)
	sched := rxkit.NewWallScheduler(rxkit.WallConfig{Clock: clk})
	defer sched.Close()

	observer := mocks.NewObserver[int]()
	rxkit.Interval(sched, time.Second).Pipe(rxkit.Take[int](3)).Subscribe(observer)

	for i := 0; i < 3; i++ {
		require.NoError(t, clk.WaitAdvance(time.Second, waitTime, 1))
	}

	require.True(t, observer.Wait(waitTime))
	assert.Equal(t, []int{0, 1, 2}, observer.Values())
	assert.Eventually(t, func() bool { return sched.Pending() == 0 }, waitTime, time.Millisecond)
}

func TestWallSchedulerCancel(t *testing.T) {
	clk := testclock.NewClock(epoch)
	sched := rxkit.NewWallScheduler(rxkit.WallConfig{Clock: clk})
	defer sched.Close()

	ran := make(chan struct{}, 1)
	token := sched.ScheduleAfter(time.Second, func() { ran <- struct{}{} })
	token.Cancel()
	assert.Equal(t, 0, sched.Pending())

	later := make(chan struct{}, 1)
	sched.ScheduleAfter(2*time.Second, func() { later <- struct{}{} })

	require.NoError(t, clk.WaitAdvance(2*time.Second, waitTime, 1))
	<-later

	select {
	case <-ran:
		t.Fatal("cancelled action ran")
	default:
	}
}

func TestWallSchedulerLogsPanics(t *testing.T) {
	var logs internal.RecordLogs
	sched := rxkit.NewWallScheduler(rxkit.WallConfig{Logs: &logs})
	defer sched.Close()

	sched.ScheduleAfter(0, func() { panic("action failed") })

	after := make(chan struct{})
	sched.ScheduleAfter(0, func() { close(after) })

	select {
	case <-after:
	case <-time.After(waitTime):
		t.Fatal("scheduler stopped after a panicking action")
	}

	entries := logs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, rxkit.ERROR, entries[0].Level)
	assert.Contains(t, entries[0].Message, "action failed")
}

func TestWallSchedulerClose(t *testing.T) {
	clk := testclock.NewClock(epoch)
	sched := rxkit.NewWallScheduler(rxkit.WallConfig{Clock: clk})

	ran := make(chan struct{}, 1)
	sched.ScheduleAfter(time.Second, func() { ran <- struct{}{} })
	sched.Close()
	sched.Close()

	sched.ScheduleAfter(0, func() { ran <- struct{}{} })
	assert.Equal(t, 0, sched.Pending())

	clk.Advance(time.Second)
	select {
	case <-ran:
		t.Fatal("action ran after close")
	case <-time.After(20 * time.Millisecond):
	}
}
