package rxkit

import "sync"

// CatchError returns an Operator which, when the source errors, subscribes
// to the stream handler returns for the error and mirrors it instead.
// Values and completion of the source pass through. If handler fails or
// panics, that error is delivered downstream.
func CatchError[T any](handler func(error) (Stream[T], error)) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			bind(down, src, func(*Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next:     down.Next,
					Complete: down.Complete,
					Error: func(err error) {
						var fallback Stream[T]
						if herr := guard("catchError", func() (herr error) {
							fallback, herr = handler(err)
							return herr
						}); herr != nil {
							down.Error(herr)
							return
						}

						bind(down, fallback, func(*Subscriber[T]) Observer[T] {
							return down
						})
					},
				}
			})
		})
	}
}

// Retry returns an Operator resubscribing to the source when it errors, at
// most count times, so the source is subscribed at most count+1 times.
// Values of every attempt are forwarded. Once retries are used up the last
// error is forwarded. A count of zero or less never retries.
func Retry[T any](count int) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			var (
				rm       sync.Mutex
				attempts int
				t        *trampoline
			)

			t = newTrampoline(func() {
				if down.Closed() {
					return
				}

				bind(down, src, func(*Subscriber[T]) Observer[T] {
					return ObserverFuncs[T]{
						Next:     down.Next,
						Complete: down.Complete,
						Error: func(err error) {
							rm.Lock()
							exhausted := attempts >= count
							if !exhausted {
								attempts++
							}
							rm.Unlock()

							if exhausted {
								down.Error(err)
								return
							}
							t.Trigger()
						},
					}
				})
			})
			t.Trigger()
		})
	}
}

// RetryWhen returns an Operator letting notifier decide when to resubscribe
// after the source errors.
//
// On the first error notifier is called once with a stream of all source
// errors, starting with that one. Every value of the returned stream
// cancels the live source, if any, and subscribes it anew. Completion of
// the notifier stream completes the output, an error of it is forwarded.
func RetryWhen[T, N any](notifier func(errs Stream[error]) Stream[N]) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			var (
				rm      sync.Mutex
				errs    *Subject[error]
				current serial
				t       *trampoline
			)
			down.Add(current.Unsubscribe)

			startNotifier := func(subject *Subject[error]) bool {
				var notes Stream[N]
				if err := guard("retryWhen", func() error {
					notes = notifier(subject.Stream())
					return nil
				}); err != nil {
					down.Error(err)
					return false
				}

				bind(down, notes, func(*Subscriber[N]) Observer[N] {
					return ObserverFuncs[N]{
						Next: func(N) {
							t.Trigger()
						},
						Error:    down.Error,
						Complete: down.Complete,
					}
				})
				return true
			}

			t = newTrampoline(func() {
				current.Cancel()
				if down.Closed() {
					return
				}

				up := upstream[T](down)
				up.observer = ObserverFuncs[T]{
					Next:     down.Next,
					Complete: down.Complete,
					Error: func(err error) {
						rm.Lock()
						first := errs == nil
						if first {
							errs = NewSubject[error]()
						}
						subject := errs
						rm.Unlock()

						if first && !startNotifier(subject) {
							return
						}
						subject.Next(err)
					},
				}

				current.Set(up)
				up.Add(down.track(up.Unsubscribe, up.halt))
				src.run(up)
			})
			t.Trigger()
		})
	}
}
