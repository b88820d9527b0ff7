package rxkit

import (
	"fmt"
	"sync"

	"github.com/gokit/xid"

	"github.com/gokit/rxkit/mailbox"
)

// ObserverPanic wraps a value recovered from a panicking Observer. The
// subscription is torn down and the panic continues with this value on the
// goroutine which was delivering the signal.
type ObserverPanic struct {
	Value interface{}
}

// Error implements the error interface.
func (o ObserverPanic) Error() string {
	return fmt.Sprintf("observer panicked: %v", o.Value)
}

// teardown is a cleanup function. For a bound upstream subscriber, halt
// stops it accepting signals ahead of its cancellation.
type teardown struct {
	fn   func()
	halt func()
}

// entry is either a signal or a barrier, a function run once every signal
// queued before it reached the observer.
type entry[T any] struct {
	sig     Signal[T]
	barrier func()
}

// downstream is the subscriber a bound upstream subscriber delivers into.
type downstream interface {
	after(fn func())
}

//***************************************************************************
// Subscriber
//***************************************************************************

// Subscriber is the delivery end of one subscription. Producers push
// signals into it with Next, Error and Complete; it queues them in arrival
// order and delivers them one at a time to its Observer, so concurrent
// producers merging into a Subscriber never interleave deliveries.
//
// A Subscriber accepts nothing after its first terminal signal and
// delivers nothing once cancelled. Registered teardowns run exactly once,
// when cancelled or after the terminal signal was delivered. A Subscriber
// feeding another stage waits until that stage delivered everything it
// handed over, all the way to the final Observer.
type Subscriber[T any] struct {
	id       xid.ID
	observer Observer[T]
	parent   downstream
	queue    *mailbox.Queue[entry[T]]
	done     chan struct{}

	sm        sync.Mutex
	gated     bool
	draining  bool
	stopped   bool
	cancelled bool
	halted    bool
	disposed  bool
	cause     Cause
	err       error
	teardowns []*teardown
	events    *Eventer
}

func newSubscriber[T any](o Observer[T]) *Subscriber[T] {
	return &Subscriber[T]{
		id:       xid.New(),
		observer: o,
		queue:    mailbox.NewQueue[entry[T]](),
		done:     make(chan struct{}),
	}
}

// ID returns the unique id of the subscription.
func (s *Subscriber[T]) ID() string {
	return s.id.String()
}

// Next delivers a value.
func (s *Subscriber[T]) Next(v T) {
	s.push(Next(v))
}

// Error terminates the subscription with err.
func (s *Subscriber[T]) Error(err error) {
	s.push(Error[T](err))
}

// Complete terminates the subscription successfully.
func (s *Subscriber[T]) Complete() {
	s.push(Complete[T]())
}

// OnNext implements the Observer interface, it is the same as Next.
func (s *Subscriber[T]) OnNext(v T) {
	s.Next(v)
}

// OnError implements the Observer interface, it is the same as Error.
func (s *Subscriber[T]) OnError(err error) {
	s.Error(err)
}

// OnComplete implements the Observer interface, it is the same as Complete.
func (s *Subscriber[T]) OnComplete() {
	s.Complete()
}

// Closed returns true once a terminal signal was accepted or the
// subscription was cancelled. Producers use it to stop early.
func (s *Subscriber[T]) Closed() bool {
	s.sm.Lock()
	defer s.sm.Unlock()
	return s.stopped
}

// Done returns a channel closed once all teardowns ran.
func (s *Subscriber[T]) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe cancels the subscription. Signals still queued are dropped.
func (s *Subscriber[T]) Unsubscribe() {
	s.dispose(CauseCancelled, nil)
}

// Add registers fn to run when the subscription ends. If it already ended
// fn runs immediately.
func (s *Subscriber[T]) Add(fn func()) {
	s.track(fn, nil)
}

// Watch adds fn as a receiver of the lifecycle events of the subscription.
// If the subscription already ended, fn receives the termination event
// immediately.
func (s *Subscriber[T]) Watch(fn func(interface{})) Watcher {
	s.sm.Lock()
	if s.disposed {
		event := SubscriptionTerminated{ID: s.ID(), Cause: s.cause, Err: s.err}
		s.sm.Unlock()
		fn(event)
		return noopWatcher{}
	}

	defer s.sm.Unlock()
	if s.events == nil {
		s.events = NewEventer()
	}
	return s.events.Subscribe(fn, nil)
}

// track registers fn as a teardown and returns a function which
// unregisters it again. halt may be nil.
func (s *Subscriber[T]) track(fn func(), halt func()) func() {
	s.sm.Lock()
	if s.disposed {
		s.sm.Unlock()
		fn()
		return func() {}
	}

	item := &teardown{fn: fn, halt: halt}
	s.teardowns = append(s.teardowns, item)
	s.sm.Unlock()

	return func() {
		s.sm.Lock()
		defer s.sm.Unlock()
		for i, td := range s.teardowns {
			if td == item {
				s.teardowns = append(s.teardowns[:i], s.teardowns[i+1:]...)
				return
			}
		}
	}
}

func (s *Subscriber[T]) push(sig Signal[T]) {
	s.sm.Lock()
	if s.stopped {
		s.sm.Unlock()
		return
	}
	if sig.Terminal() {
		s.stopped = true
	}

	s.queue.Push(entry[T]{sig: sig})
	if s.draining || s.gated {
		s.sm.Unlock()
		return
	}
	s.draining = true
	s.sm.Unlock()

	s.drain()
}

// open releases a subscriber created gated, delivering anything queued
// while it was held on a separate goroutine.
func (s *Subscriber[T]) open() {
	s.sm.Lock()
	s.gated = false
	if s.draining || s.cancelled || s.queue.Empty() {
		s.sm.Unlock()
		return
	}
	s.draining = true
	s.sm.Unlock()

	go s.drain()
}

func (s *Subscriber[T]) drain() {
	for {
		s.sm.Lock()
		if s.cancelled {
			s.draining = false
			s.sm.Unlock()
			s.queue.Clear()
			return
		}

		next, ok := s.queue.Pop()
		if !ok {
			s.draining = false
			s.sm.Unlock()
			return
		}

		if next.barrier != nil {
			s.sm.Unlock()
			s.handOff(next.barrier)
			continue
		}

		sig := next.sig
		var cause Cause
		var err error
		if sig.Terminal() {
			if s.cause == 0 {
				s.cause = CauseCompleted
				if sig.Kind == ErrorSignal {
					s.cause = CauseErrored
					s.err = sig.Err
				}
			}
			cause, err = s.cause, s.err
		}
		s.sm.Unlock()

		s.deliver(sig)

		if sig.Terminal() {
			s.handOff(func() {
				s.dispose(cause, err)
			})
		}
	}
}

// after runs fn once every signal queued so far was delivered, or at once
// if the subscriber is already disposed.
func (s *Subscriber[T]) after(fn func()) {
	s.sm.Lock()
	if s.disposed {
		s.sm.Unlock()
		fn()
		return
	}

	s.queue.Push(entry[T]{barrier: fn})
	if s.draining || s.gated {
		s.sm.Unlock()
		return
	}
	s.draining = true
	s.sm.Unlock()

	s.drain()
}

// handOff passes fn on to the parent to run after its own pending
// deliveries, or runs it when there is no parent.
func (s *Subscriber[T]) handOff(fn func()) {
	if s.parent != nil {
		s.parent.after(fn)
		return
	}
	fn()
}

// cancelAfter halts s and every subscriber upstream of it at once, so
// producers see Closed, and cancels s once down delivered everything
// handed to it so far.
func (s *Subscriber[T]) cancelAfter(down downstream) {
	s.halt()
	down.after(s.Unsubscribe)
}

func (s *Subscriber[T]) halt() {
	s.sm.Lock()
	if s.halted || s.disposed {
		s.sm.Unlock()
		return
	}
	s.halted = true
	s.stopped = true

	var upstreams []func()
	for _, td := range s.teardowns {
		if td.halt != nil {
			upstreams = append(upstreams, td.halt)
		}
	}
	s.sm.Unlock()

	for _, halt := range upstreams {
		halt()
	}
}

func (s *Subscriber[T]) deliver(sig Signal[T]) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		s.sm.Lock()
		s.draining = false
		s.sm.Unlock()

		if op, ok := r.(ObserverPanic); ok {
			s.dispose(CauseErrored, op)
			panic(op)
		}

		op := ObserverPanic{Value: r}
		s.dispose(CauseErrored, op)
		panic(op)
	}()

	if s.observer != nil {
		sig.Accept(s.observer)
	}
}

func (s *Subscriber[T]) dispose(cause Cause, err error) {
	s.sm.Lock()
	if s.disposed {
		s.sm.Unlock()
		return
	}

	s.disposed = true
	s.stopped = true
	s.cancelled = true
	if s.cause == 0 {
		s.cause = cause
		s.err = err
	}

	teardowns := s.teardowns
	s.teardowns = nil
	events := s.events
	event := SubscriptionTerminated{ID: s.ID(), Cause: s.cause, Err: s.err}
	s.sm.Unlock()

	for _, td := range teardowns {
		td.fn()
	}
	close(s.done)

	if events != nil {
		events.Publish(event)
	}
}

type noopWatcher struct{}

func (noopWatcher) Stop() {}
