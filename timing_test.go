package rxkit_test

import (
	"testing"
	"time"

	"github.com/gokit/errors"
	"github.com/stretchr/testify/assert"

	"github.com/gokit/rxkit"
	"github.com/gokit/rxkit/mocks"
)

func TestDelay(t *testing.T) {
	t.Run("shifts every signal", func(t *testing.T) {
		sched := rxkit.NewVirtualScheduler(time.Time{})
		observer := mocks.NewObserver[int]()

		rxkit.Of(1, 2, 3).Pipe(rxkit.Delay[int](sched, time.Second)).Subscribe(observer)

		sched.Advance(999 * time.Millisecond)
		assert.Empty(t, observer.Signals())

		sched.Advance(time.Millisecond)
		assert.Equal(t, []int{1, 2, 3}, observer.Values())
		assert.True(t, observer.Completed())
	})

	t.Run("keeps spacing and order", func(t *testing.T) {
		sched := rxkit.NewVirtualScheduler(time.Time{})
		observer := mocks.NewObserver[int]()

		rxkit.Interval(sched, time.Second).
			Pipe(rxkit.Take[int](3), rxkit.Delay[int](sched, 1500*time.Millisecond)).
			Subscribe(observer)

		sched.Advance(2 * time.Second)
		assert.Empty(t, observer.Values())

		sched.Advance(500 * time.Millisecond)
		assert.Equal(t, []int{0}, observer.Values())

		sched.Advance(time.Second)
		assert.Equal(t, []int{0, 1}, observer.Values())
		assert.False(t, observer.Completed())

		sched.Advance(time.Second)
		assert.Equal(t, []int{0, 1, 2}, observer.Values())
		assert.True(t, observer.Completed())
	})

	t.Run("delays errors too", func(t *testing.T) {
		sched := rxkit.NewVirtualScheduler(time.Time{})
		observer := mocks.NewObserver[int]()

		rxkit.Concat(rxkit.Of(1), rxkit.Throw[int](errBad)).
			Pipe(rxkit.Delay[int](sched, time.Second)).
			Subscribe(observer)

		sched.Advance(500 * time.Millisecond)
		assert.Nil(t, observer.Err())

		sched.Advance(500 * time.Millisecond)
		assert.Equal(t, []int{1}, observer.Values())
		assert.True(t, errors.IsAny(observer.Err(), errBad))
	})

	t.Run("cancellation drops pending signals", func(t *testing.T) {
		sched := rxkit.NewVirtualScheduler(time.Time{})
		observer := mocks.NewObserver[int]()

		sub := rxkit.Of(1, 2).Pipe(rxkit.Delay[int](sched, time.Second)).Subscribe(observer)
		sub.Unsubscribe()

		sched.Advance(time.Second)
		assert.Empty(t, observer.Signals())
		assert.Equal(t, 0, sched.Pending())
	})
}

func TestDelayWhen(t *testing.T) {
	t.Run("reorders by trigger", func(t *testing.T) {
		sched := rxkit.NewVirtualScheduler(time.Time{})
		observer := mocks.NewObserver[int]()

		rxkit.Interval(sched, time.Second).
			Pipe(
				rxkit.Take[int](3),
				rxkit.DelayWhen(func(v int) (rxkit.Stream[int], error) {
					return rxkit.Of(v).Pipe(rxkit.Delay[int](sched, time.Duration(v%2)*2*time.Second)), nil
				}),
			).
			Subscribe(observer)

		sched.Advance(3 * time.Second)
		assert.Equal(t, []int{0, 2}, observer.Values())
		assert.False(t, observer.Completed(), "completion waits for pending triggers")

		sched.Advance(time.Second)
		assert.Equal(t, []int{0, 2, 1}, observer.Values())
		assert.True(t, observer.Completed())
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("trigger completing without value releases", func(t *testing.T) {
		values, err := rxkit.Collect(rxkit.Of(1, 2).Pipe(rxkit.DelayWhen(func(int) (rxkit.Stream[string], error) {
			return rxkit.Empty[string](), nil
		})))

		assert.NoError(t, err)
		assert.Equal(t, []int{1, 2}, values)
	})

	t.Run("trigger fires once", func(t *testing.T) {
		sched := rxkit.NewVirtualScheduler(time.Time{})
		observer := mocks.NewObserver[int]()

		rxkit.Of(5).
			Pipe(rxkit.DelayWhen(func(int) (rxkit.Stream[int], error) {
				return rxkit.Interval(sched, time.Second), nil
			})).
			Subscribe(observer)

		sched.Advance(5 * time.Second)
		assert.Equal(t, []int{5}, observer.Values())
		assert.True(t, observer.Completed())
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("selector failure", func(t *testing.T) {
		_, err := rxkit.Collect(rxkit.Of(1).Pipe(rxkit.DelayWhen(func(int) (rxkit.Stream[int], error) {
			return rxkit.Stream[int]{}, errBad
		})))
		assert.True(t, errors.IsAny(err, errBad))
	})

	t.Run("trigger error", func(t *testing.T) {
		_, err := rxkit.Collect(rxkit.Of(1).Pipe(rxkit.DelayWhen(func(int) (rxkit.Stream[int], error) {
			return rxkit.Throw[int](errBad), nil
		})))
		assert.True(t, errors.IsAny(err, errBad))
	})
}
