package rxkit

import (
	"time"
)

//***************************************************************************
// Sources
//***************************************************************************

// Of returns a Stream emitting vs in order, then completing.
func Of[T any](vs ...T) Stream[T] {
	return Create(func(down *Subscriber[T]) {
		for _, v := range vs {
			if down.Closed() {
				return
			}
			down.Next(v)
		}
		down.Complete()
	})
}

// Empty returns a Stream which completes without values.
func Empty[T any]() Stream[T] {
	return Create(func(down *Subscriber[T]) {
		down.Complete()
	})
}

// Never returns a Stream which never emits any signal.
func Never[T any]() Stream[T] {
	return Create(func(*Subscriber[T]) {})
}

// Throw returns a Stream which errors with err immediately.
func Throw[T any](err error) Stream[T] {
	return Create(func(down *Subscriber[T]) {
		down.Error(err)
	})
}

// ThrowWith returns a Stream which errors with the error fn returns, fn
// being called for every subscription.
func ThrowWith[T any](fn func() error) Stream[T] {
	return Create(func(down *Subscriber[T]) {
		var err error
		if perr := guard("throwWith", func() error {
			err = fn()
			return nil
		}); perr != nil {
			err = perr
		}
		down.Error(err)
	})
}

// Defer returns a Stream which calls factory for every subscription and
// subscribes to the stream it returns.
func Defer[T any](factory func() (Stream[T], error)) Stream[T] {
	return Create(func(down *Subscriber[T]) {
		var src Stream[T]
		if err := guard("defer", func() (err error) {
			src, err = factory()
			return err
		}); err != nil {
			down.Error(err)
			return
		}
		src.run(down)
	})
}

// Iif returns a Stream which, on every subscription, subscribes to then if
// cond returns true and to otherwise if not.
func Iif[T any](cond func() bool, then Stream[T], otherwise Stream[T]) Stream[T] {
	return Defer(func() (Stream[T], error) {
		if cond() {
			return then, nil
		}
		return otherwise, nil
	})
}

// Interval returns a Stream emitting 0, 1, 2 ... on s, the first value one
// period after subscribing and then once every period. It never completes.
func Interval(s Scheduler, period time.Duration) Stream[int] {
	return Create(func(down *Subscriber[int]) {
		var count int
		token := s.ScheduleEvery(period, func() {
			v := count
			count++
			down.Next(v)
		})
		down.Add(token.Cancel)
	})
}

// Timer returns a Stream emitting 0 on s after d, then completing.
func Timer(s Scheduler, d time.Duration) Stream[int] {
	return Create(func(down *Subscriber[int]) {
		token := s.ScheduleAfter(d, func() {
			down.Next(0)
			down.Complete()
		})
		down.Add(token.Cancel)
	})
}
