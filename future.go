package rxkit

import (
	"sync"
	"time"

	"github.com/gokit/errors"
	"github.com/gokit/xid"
)

// FutureResolved is published by a Future resolved with a value.
type FutureResolved[T any] struct {
	ID   string
	Data T
}

// FutureRejected is published by a Future rejected with an error.
type FutureRejected struct {
	ID  string
	Err error
}

// Future holds the eventual outcome of a stream: its last value once it
// completes, or the error it failed with.
type Future[T any] struct {
	id     xid.ID
	events *Eventer

	w        sync.WaitGroup
	cw       sync.Mutex
	resolved bool
	err      error
	result   T
	sub      Subscription
	timeout  CancelToken
}

func newFuture[T any]() *Future[T] {
	ft := &Future[T]{id: xid.New(), events: NewEventer()}
	ft.w.Add(1)
	return ft
}

// ToFuture subscribes to s and returns a Future resolved with the last
// value s emits once it completes. It is rejected with the error of s, or
// with ErrNoValue if s completes empty.
func ToFuture[T any](s Stream[T]) *Future[T] {
	ft := newFuture[T]()
	ft.subscribe(s)
	return ft
}

// TimedFuture is ToFuture with a deadline on sched: if s has not finished
// after d the subscription is cancelled and the Future is rejected with
// ErrFutureTimeout.
func TimedFuture[T any](s Stream[T], sched Scheduler, d time.Duration) *Future[T] {
	ft := newFuture[T]()

	token := sched.ScheduleAfter(d, func() {
		ft.reject(errors.Wrap(ErrFutureTimeout, "Future %q not resolved after %s", ft.ID(), d))
	})

	ft.cw.Lock()
	ft.timeout = token
	ft.cw.Unlock()

	ft.subscribe(s)
	return ft
}

// Collect subscribes to s and blocks until it finishes, returning all the
// values it emitted.
func Collect[T any](s Stream[T]) ([]T, error) {
	ft := ToFuture(ToArray[T]()(s))
	if err := ft.Wait(); err != nil {
		return nil, err
	}
	return ft.Result(), nil
}

// ID returns the unique id of giving Future.
func (f *Future[T]) ID() string {
	return f.id.String()
}

// Wait blocks till the giving future is resolved and returns error if
// occurred.
func (f *Future[T]) Wait() error {
	f.w.Wait()
	return f.Err()
}

// Err returns the error for the failure of
// giving future.
func (f *Future[T]) Err() error {
	f.cw.Lock()
	defer f.cw.Unlock()
	return f.err
}

// Result returns the value the future was resolved with.
func (f *Future[T]) Result() T {
	f.cw.Lock()
	defer f.cw.Unlock()
	return f.result
}

// Resolved returns true if the future was resolved or rejected.
func (f *Future[T]) Resolved() bool {
	f.cw.Lock()
	defer f.cw.Unlock()
	return f.resolved
}

// Stop cancels the underlying subscription, rejecting the future with
// ErrFutureStopped if it was still pending.
func (f *Future[T]) Stop() {
	f.reject(errors.WrapOnly(ErrFutureStopped))
}

// Watch adds giving function into event system for future. If the future
// is resolved already, fn receives the outcome immediately.
func (f *Future[T]) Watch(fn func(interface{})) Watcher {
	f.cw.Lock()
	if f.resolved {
		event := f.event()
		f.cw.Unlock()
		fn(event)
		return noopWatcher{}
	}
	defer f.cw.Unlock()
	return f.events.Subscribe(fn, nil)
}

func (f *Future[T]) subscribe(s Stream[T]) {
	var (
		last T
		seen bool
	)

	sub := s.Subscribe(ObserverFuncs[T]{
		Next: func(v T) {
			last, seen = v, true
		},
		Error: f.reject,
		Complete: func() {
			if !seen {
				f.reject(errors.WrapOnly(ErrNoValue))
				return
			}
			f.resolve(last)
		},
	})

	f.cw.Lock()
	if f.resolved {
		f.cw.Unlock()
		sub.Unsubscribe()
		return
	}
	f.sub = sub
	f.cw.Unlock()
}

func (f *Future[T]) resolve(v T) {
	f.settle(v, nil)
}

func (f *Future[T]) reject(err error) {
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) {
	f.cw.Lock()
	if f.resolved {
		f.cw.Unlock()
		return
	}
	f.resolved = true
	f.result = v
	f.err = err
	sub, timeout := f.sub, f.timeout
	f.sub, f.timeout = nil, nil
	event := f.event()
	f.cw.Unlock()

	if timeout != nil {
		timeout.Cancel()
	}
	if sub != nil {
		sub.Unsubscribe()
	}
	f.w.Done()
	f.events.Publish(event)
}

// event must be called with cw held.
func (f *Future[T]) event() interface{} {
	if f.err != nil {
		return FutureRejected{ID: f.id.String(), Err: f.err}
	}
	return FutureResolved[T]{ID: f.id.String(), Data: f.result}
}
