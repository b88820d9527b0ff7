// Package rxkit implements a lazy, push-based reactive stream runtime:
// streams, schedulers, composable operators and subscriptions which release
// their resources exactly once.
package rxkit

import (
	"time"
)

//***************************************************************************
// Signal
//***************************************************************************

// SignalKind identifies which of the three stream signals a Signal carries.
type SignalKind uint8

// constants of signal kinds.
const (
	NextSignal SignalKind = iota + 1
	ErrorSignal
	CompleteSignal
)

// String implements the Stringer interface.
func (k SignalKind) String() string {
	switch k {
	case NextSignal:
		return "next"
	case ErrorSignal:
		return "error"
	case CompleteSignal:
		return "complete"
	}
	return "unknown"
}

// Signal defines a tagged value delivered to an Observer. Only one of
// Value or Err is meaningful, depending on Kind.
type Signal[T any] struct {
	Kind  SignalKind
	Value T
	Err   error
}

// Next returns a next signal carrying v.
func Next[T any](v T) Signal[T] {
	return Signal[T]{Kind: NextSignal, Value: v}
}

// Error returns an error signal carrying err.
func Error[T any](err error) Signal[T] {
	return Signal[T]{Kind: ErrorSignal, Err: err}
}

// Complete returns a completion signal.
func Complete[T any]() Signal[T] {
	return Signal[T]{Kind: CompleteSignal}
}

// Terminal returns true if the signal ends a subscription.
func (s Signal[T]) Terminal() bool {
	return s.Kind == ErrorSignal || s.Kind == CompleteSignal
}

// Accept delivers the signal to the matching method of o.
func (s Signal[T]) Accept(o Observer[T]) {
	switch s.Kind {
	case NextSignal:
		o.OnNext(s.Value)
	case ErrorSignal:
		o.OnError(s.Err)
	case CompleteSignal:
		o.OnComplete()
	}
}

//***************************************************************************
// Observer
//***************************************************************************

// Observer defines the receiving end of a stream. OnNext may be called any
// number of times, followed by at most one call to either OnError or
// OnComplete. Calls are never concurrent for a single subscription.
type Observer[T any] interface {
	OnNext(T)
	OnError(error)
	OnComplete()
}

// ObserverFuncs implements the Observer interface with optional
// functions, a nil function ignores the signal.
type ObserverFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// OnNext implements the Observer interface.
func (o ObserverFuncs[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

// OnError implements the Observer interface.
func (o ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// OnComplete implements the Observer interface.
func (o ObserverFuncs[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// OnNextFunc returns an Observer which only handles values.
func OnNextFunc[T any](fn func(T)) Observer[T] {
	return ObserverFuncs[T]{Next: fn}
}

//***************************************************************************
// Subscription
//***************************************************************************

// Subscription represents one live consumption of a Stream.
type Subscription interface {
	// Unsubscribe cancels the subscription, no signal is delivered once
	// it returns and all cleanup registered with the subscription runs.
	// Calling it more than once or after termination does nothing.
	Unsubscribe()

	// Closed returns true once the subscription terminated or was cancelled.
	Closed() bool

	// Done returns a channel closed after the subscription released its
	// resources.
	Done() <-chan struct{}
}

// Watcher defines a method which exposes a single method
// to remove giving subscription to lifecycle events.
type Watcher interface {
	Stop()
}

//***************************************************************************
// Operator
//***************************************************************************

// Operator defines a transformation from one stream into another. Operators
// hold no state across applications; per-subscription state lives inside
// the returned stream's producer.
type Operator[T, U any] func(Stream[T]) Stream[U]

//***************************************************************************
// Scheduler
//***************************************************************************

// CancelToken cancels a scheduled action. Cancelling an action which
// already ran or was cancelled does nothing.
type CancelToken interface {
	Cancel()
}

// Scheduler defines a logical clock which runs actions after delays.
//
// Actions targeted at an earlier time run first, actions targeted at the
// same time run in the order they were scheduled. Actions of one scheduler
// never run concurrently with each other.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// ScheduleAfter runs action once after d elapsed.
	ScheduleAfter(d time.Duration, action func()) CancelToken

	// ScheduleEvery runs action every period until cancelled.
	ScheduleEvery(period time.Duration, action func()) CancelToken
}

//***************************************************************************
// Lifecycle Events
//***************************************************************************

// Cause describes why a subscription terminated.
type Cause uint8

// constants of termination causes.
const (
	CauseCompleted Cause = iota + 1
	CauseErrored
	CauseCancelled
)

// String implements the Stringer interface.
func (c Cause) String() string {
	switch c {
	case CauseCompleted:
		return "completed"
	case CauseErrored:
		return "errored"
	case CauseCancelled:
		return "cancelled"
	}
	return "unknown"
}

// SubscriptionTerminated is published to watchers of a Subscriber after it
// released its resources.
type SubscriptionTerminated struct {
	ID    string
	Cause Cause
	Err   error
}
