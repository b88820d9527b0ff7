package retries_test

import (
	"testing"
	"time"

	"github.com/gokit/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokit/rxkit"
	"github.com/gokit/rxkit/mocks"
	"github.com/gokit/rxkit/retries"
)

var errFlaky = errors.New("flaky")

func flaky(failures int, attempts *int) rxkit.Stream[string] {
	return rxkit.Create(func(down *rxkit.Subscriber[string]) {
		*attempts++
		if *attempts <= failures {
			down.Error(errFlaky)
			return
		}
		down.Next("ok")
		down.Complete()
	})
}

func TestWithBackOffWaitsBetweenAttempts(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(time.Time{})
	observer := mocks.NewObserver[string]()

	var attempts int
	flaky(2, &attempts).
		Pipe(retries.WithBackOff[string](sched, 5, retries.Linear(time.Second))).
		Subscribe(observer)

	require.Equal(t, 1, attempts)

	sched.Advance(time.Second)
	assert.Equal(t, 2, attempts)

	sched.Advance(time.Second)
	assert.Equal(t, 2, attempts, "second retry waits two seconds")

	sched.Advance(time.Second)
	assert.Equal(t, 3, attempts)

	require.True(t, observer.Wait(time.Second))
	assert.Equal(t, []string{"ok"}, observer.Values())
	assert.True(t, observer.Completed())
	assert.Equal(t, 0, sched.Pending())
}

func TestWithBackOffGivesUp(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(time.Time{})
	observer := mocks.NewObserver[string]()

	var attempts int
	flaky(10, &attempts).
		Pipe(retries.WithBackOff[string](sched, 2, retries.Constant(time.Second))).
		Subscribe(observer)

	sched.Advance(5 * time.Second)

	require.True(t, observer.Wait(time.Second))
	assert.Equal(t, 3, attempts)
	assert.True(t, errors.IsAny(observer.Err(), errFlaky))
	assert.Empty(t, observer.Values())
}

func TestWithBackOffWithoutRetries(t *testing.T) {
	sched := rxkit.NewVirtualScheduler(time.Time{})
	observer := mocks.NewObserver[string]()

	var attempts int
	flaky(1, &attempts).
		Pipe(retries.WithBackOff[string](sched, 0, retries.Constant(time.Second))).
		Subscribe(observer)

	require.True(t, observer.Wait(time.Second))
	assert.Equal(t, 1, attempts)
	assert.True(t, errors.IsAny(observer.Err(), errFlaky))
}

func TestBackOffs(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		b := retries.Linear(time.Second)
		assert.Equal(t, time.Second, b(1))
		assert.Equal(t, 3*time.Second, b(3))
	})

	t.Run("exponential", func(t *testing.T) {
		b := retries.Exponential(time.Second)
		assert.Equal(t, time.Second, b(1))
		assert.Equal(t, 2*time.Second, b(2))
		assert.Equal(t, 8*time.Second, b(4))
	})

	t.Run("ranged exponential", func(t *testing.T) {
		b := retries.RangedExponential(time.Second, 5*time.Second)
		assert.Equal(t, time.Second, b(1))
		assert.Equal(t, 4*time.Second, b(3))
		assert.Equal(t, 5*time.Second, b(4))
		assert.Equal(t, 5*time.Second, b(100))
	})

	t.Run("jittered", func(t *testing.T) {
		b := retries.Jittered(retries.Constant(time.Second), 0.5)
		for i := 1; i < 50; i++ {
			wait := b(i)
			assert.True(t, wait >= 500*time.Millisecond, "%s too short", wait)
			assert.True(t, wait <= 1500*time.Millisecond, "%s too long", wait)
		}
	})

	t.Run("linear range jitters", func(t *testing.T) {
		b := retries.LinearRangeJitters(time.Second, 2*time.Second)
		for i := 1; i < 20; i++ {
			wait := b(i)
			assert.True(t, wait >= time.Duration(i)*time.Second)
			assert.True(t, wait <= time.Duration(i)*2*time.Second)
		}
		assert.Equal(t, 3*time.Second, retries.LinearRangeJitters(time.Second, time.Second)(3))
	})
}
