package rxkit

// Stream is a lazy, cold description of a sequence of signals. Nothing
// happens until it is subscribed, and every subscription runs its own
// producer. The zero Stream completes immediately.
type Stream[T any] struct {
	produce func(*Subscriber[T])
}

// Create returns a Stream which runs produce for every subscription.
//
// The producer pushes signals into the Subscriber and registers any resource
// it holds with Subscriber.Add, so it is released when the subscription
// ends. A producer which panics errors the subscription with an error
// wrapping ErrProducerPanic.
func Create[T any](produce func(*Subscriber[T])) Stream[T] {
	return Stream[T]{produce: produce}
}

// Subscribe starts a new subscription delivering to o.
//
// Production is set up before Subscribe returns, but signals are never
// delivered on the calling goroutine: anything emitted while setting up is
// held and delivered on a separate goroutine once the subscription exists.
// Later signals are delivered on the goroutine producing them.
func (s Stream[T]) Subscribe(o Observer[T]) Subscription {
	sub := newSubscriber(o)
	sub.gated = true
	s.run(sub)
	sub.open()
	return sub
}

// SubscribeFuncs is Subscribe with an ObserverFuncs built from the given
// functions, any of which may be nil.
func (s Stream[T]) SubscribeFuncs(next func(T), fail func(error), complete func()) Subscription {
	return s.Subscribe(ObserverFuncs[T]{Next: next, Error: fail, Complete: complete})
}

// Pipe applies ops in order, each receiving the output of the previous.
func (s Stream[T]) Pipe(ops ...Operator[T, T]) Stream[T] {
	for _, op := range ops {
		if op != nil {
			s = op(s)
		}
	}
	return s
}

// run executes the producer of s into sub.
func (s Stream[T]) run(sub *Subscriber[T]) {
	if s.produce == nil {
		sub.Complete()
		return
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if op, ok := r.(ObserverPanic); ok {
			panic(op)
		}
		sub.Error(panicError(ErrProducerPanic, "produce", r))
	}()

	s.produce(sub)
}

// bind subscribes src synchronously with the observer built for the new
// upstream subscriber and ties the upstream lifetime to down: cancelling
// down cancels upstream, while upstream ending on its own leaves down alive.
func bind[T, U any](down *Subscriber[U], src Stream[T], build func(up *Subscriber[T]) Observer[T]) *Subscriber[T] {
	up := upstream[T](down)
	up.observer = build(up)

	up.Add(down.track(up.Unsubscribe, up.halt))
	src.run(up)
	return up
}

// upstream returns a subscriber delivering into down, released only once
// down delivered what it received from it.
func upstream[T, U any](down *Subscriber[U]) *Subscriber[T] {
	up := newSubscriber[T](nil)
	up.parent = down
	return up
}
