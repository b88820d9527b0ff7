package rxkit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gokit/rxkit"
)

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestVirtualSchedulerOrder(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(epoch)

	var order []string
	sched.ScheduleAfter(2*time.Second, func() { order = append(order, "b") })
	sched.ScheduleAfter(time.Second, func() { order = append(order, "a") })
	sched.ScheduleAfter(2*time.Second, func() { order = append(order, "c") })
	sched.ScheduleAfter(-time.Second, func() { order = append(order, "now") })

	assert.Equal(t, 4, sched.Pending())
	sched.Advance(2 * time.Second)

	assert.Equal(t, []string{"now", "a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(2*time.Second), sched.Now())
	assert.Equal(t, 0, sched.Pending())
}

func TestVirtualSchedulerNowDuringAction(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(epoch)

	var at time.Time
	sched.ScheduleAfter(1500*time.Millisecond, func() { at = sched.Now() })
	sched.Advance(5 * time.Second)

	assert.Equal(t, epoch.Add(1500*time.Millisecond), at)
	assert.Equal(t, epoch.Add(5*time.Second), sched.Now())
}

func TestVirtualSchedulerNestedScheduling(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(epoch)

	var order []string
	sched.ScheduleAfter(time.Second, func() {
		order = append(order, "outer")
		sched.ScheduleAfter(time.Second, func() { order = append(order, "inside window") })
		sched.ScheduleAfter(5*time.Second, func() { order = append(order, "outside window") })
	})

	sched.Advance(3 * time.Second)
	assert.Equal(t, []string{"outer", "inside window"}, order)
	assert.Equal(t, 1, sched.Pending())
}

func TestVirtualSchedulerCancel(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(epoch)

	var runs int
	token := sched.ScheduleAfter(time.Second, func() { runs++ })
	token.Cancel()
	token.Cancel()

	assert.Equal(t, 0, sched.Pending())
	sched.Advance(time.Second)
	assert.Equal(t, 0, runs)
}

func TestVirtualSchedulerPeriodic(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(epoch)

	var ticks []time.Duration
	var token rxkit.CancelToken
	token = sched.ScheduleEvery(time.Second, func() {
		ticks = append(ticks, sched.Now().Sub(epoch))
		if len(ticks) == 3 {
			token.Cancel()
		}
	})

	sched.Advance(10 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, ticks)
	assert.Equal(t, 0, sched.Pending())
}

func TestVirtualSchedulerFlush(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(epoch)

	var ticks, shots int
	sched.ScheduleEvery(time.Second, func() { ticks++ })
	sched.ScheduleAfter(3*time.Second, func() {
		shots++
		sched.ScheduleAfter(2*time.Second, func() { shots++ })
	})

	assert.True(t, sched.Flush(10))
	assert.Equal(t, 2, shots)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, epoch.Add(5*time.Second), sched.Now())
	assert.Equal(t, 1, sched.Pending(), "periodic task stays scheduled")

	var chain func()
	chain = func() { sched.ScheduleAfter(time.Second, chain) }
	sched.ScheduleAfter(time.Second, chain)
	assert.False(t, sched.Flush(3))
}
