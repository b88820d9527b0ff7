// Package retries provides back-off policies and a retrying operator which
// waits between attempts on a scheduler.
package retries

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gokit/rxkit"
)

// BackOff returns how long to wait before the given retry attempt. Attempts
// are counted from one.
type BackOff func(attempt int) time.Duration

//***************************************************************
// Operator
//***************************************************************

// WithBackOff returns an Operator resubscribing to its source after an
// error, waiting backoff(n) on s before the n-th retry. After max retries
// the last error is delivered downstream. A max of zero or less never
// retries.
func WithBackOff[T any](s rxkit.Scheduler, max int, backoff BackOff) rxkit.Operator[T, T] {
	return rxkit.RetryWhen[T](func(errs rxkit.Stream[error]) rxkit.Stream[int] {
		var attempt int
		return rxkit.SwitchMap(func(err error) (rxkit.Stream[int], error) {
			attempt++
			if attempt > max {
				return rxkit.Throw[int](err), nil
			}
			return rxkit.Timer(s, backoff(attempt)), nil
		})(errs)
	})
}

//***************************************************************
// BackOff Generators
//
// Taken from the ff:
// 1. https://github.com/sethgrid/pester
// 2. https://github.com/cenkalti/backoff
// 3. https://github.com/hashicorp/go-retryablehttp
//***************************************************************

var (
	rm     sync.Mutex
	random = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func randomFloat() float64 {
	rm.Lock()
	defer rm.Unlock()
	return random.Float64()
}

// Constant waits d before every attempt.
func Constant(d time.Duration) BackOff {
	return func(int) time.Duration {
		return d
	}
}

// Linear returns increasing durations, each a unit longer than the last.
func Linear(unit time.Duration) BackOff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * unit
	}
}

// Exponential returns durations doubling with every attempt, starting at
// unit.
func Exponential(unit time.Duration) BackOff {
	return func(attempt int) time.Duration {
		return time.Duration(1<<uint(attempt-1)) * unit
	}
}

// RangedExponential is Exponential starting at min and never exceeding max.
func RangedExponential(min, max time.Duration) BackOff {
	return func(attempt int) time.Duration {
		mult := math.Pow(2, float64(attempt-1)) * float64(min)
		wait := time.Duration(mult)
		if float64(wait) != mult || wait > max {
			wait = max
		}
		return wait
	}
}

// Jittered spreads every duration of b by a random +/- factor, so clients
// failing together do not retry together. factor is clamped to [0, 1].
func Jittered(b BackOff, factor float64) BackOff {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}

	return func(attempt int) time.Duration {
		return spread(b(attempt), factor, randomFloat())
	}
}

// LinearRangeJitters returns linear back offs whose unit is picked at
// random between min and max on every attempt.
//
// For instance:
// * To get strictly linear back off of one second increasing each retry, set
// both to one second (1s, 2s, 3s, 4s, ...)
// * To get a small amount of jitter centered around one second increasing each
// retry, set to around one second, such as a min of 800ms and max of 1200ms
// (892ms, 2102ms, 2945ms, 4312ms, ...)
func LinearRangeJitters(min, max time.Duration) BackOff {
	return func(attempt int) time.Duration {
		if max <= min {
			return min * time.Duration(attempt)
		}

		unit := int64(randomFloat()*float64(max-min)) + int64(min)
		return time.Duration(unit * int64(attempt))
	}
}

// spread returns a value from the interval
// [d - factor*d, d + factor*d] picked by r in [0, 1).
func spread(d time.Duration, factor float64, r float64) time.Duration {
	delta := factor * float64(d)
	low := float64(d) - delta
	high := float64(d) + delta

	wait := time.Duration(low + r*(high-low))
	if wait <= 0 {
		wait = 1
	}
	return wait
}
