// Package mocks provides recording implementations of rxkit interfaces for
// use in tests.
package mocks

import (
	"sync"
	"time"
)

// Observer implements the rxkit.Observer interface, recording every
// signal it receives.
type Observer[T any] struct {
	ml        sync.Mutex
	values    []T
	err       error
	completed bool
	terminals int
	signals   []string

	once sync.Once
	done chan struct{}
}

// NewObserver returns a new instance of a recording Observer.
func NewObserver[T any]() *Observer[T] {
	return &Observer[T]{done: make(chan struct{})}
}

// OnNext records v.
func (o *Observer[T]) OnNext(v T) {
	o.ml.Lock()
	defer o.ml.Unlock()
	o.values = append(o.values, v)
	o.signals = append(o.signals, "next")
}

// OnError records err as the terminal signal.
func (o *Observer[T]) OnError(err error) {
	o.ml.Lock()
	o.err = err
	o.terminals++
	o.signals = append(o.signals, "error")
	o.ml.Unlock()
	o.once.Do(func() { close(o.done) })
}

// OnComplete records completion as the terminal signal.
func (o *Observer[T]) OnComplete() {
	o.ml.Lock()
	o.completed = true
	o.terminals++
	o.signals = append(o.signals, "complete")
	o.ml.Unlock()
	o.once.Do(func() { close(o.done) })
}

// Values returns a copy of the values received so far.
func (o *Observer[T]) Values() []T {
	o.ml.Lock()
	defer o.ml.Unlock()
	return append([]T(nil), o.values...)
}

// Signals returns the kinds of all signals received, in order.
func (o *Observer[T]) Signals() []string {
	o.ml.Lock()
	defer o.ml.Unlock()
	return append([]string(nil), o.signals...)
}

// Err returns the error received, if any.
func (o *Observer[T]) Err() error {
	o.ml.Lock()
	defer o.ml.Unlock()
	return o.err
}

// Completed returns true if completion was received.
func (o *Observer[T]) Completed() bool {
	o.ml.Lock()
	defer o.ml.Unlock()
	return o.completed
}

// Terminals returns how many terminal signals were received. Anything but
// zero or one is a broken stream.
func (o *Observer[T]) Terminals() int {
	o.ml.Lock()
	defer o.ml.Unlock()
	return o.terminals
}

// Done returns a channel closed on the first terminal signal.
func (o *Observer[T]) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until a terminal signal arrived or d elapsed, returning
// false on timeout.
func (o *Observer[T]) Wait(d time.Duration) bool {
	select {
	case <-o.done:
		return true
	case <-time.After(d):
		return false
	}
}
