package rxkit

//***************************************************************************
// Transformations
//***************************************************************************

// Map returns an Operator applying fn to every value. If fn fails or
// panics, the error is delivered downstream and upstream is cancelled.
func Map[T, U any](fn func(T) (U, error)) Operator[T, U] {
	return func(src Stream[T]) Stream[U] {
		return Create(func(down *Subscriber[U]) {
			bind(down, src, func(up *Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						var out U
						if err := guard("map", func() (err error) {
							out, err = fn(v)
							return err
						}); err != nil {
							down.Error(err)
							up.cancelAfter(down)
							return
						}
						down.Next(out)
					},
					Error:    down.Error,
					Complete: down.Complete,
				}
			})
		})
	}
}

// Filter returns an Operator forwarding only values for which keep returns
// true.
func Filter[T any](keep func(T) (bool, error)) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			bind(down, src, func(up *Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						var ok bool
						if err := guard("filter", func() (err error) {
							ok, err = keep(v)
							return err
						}); err != nil {
							down.Error(err)
							up.cancelAfter(down)
							return
						}
						if ok {
							down.Next(v)
						}
					},
					Error:    down.Error,
					Complete: down.Complete,
				}
			})
		})
	}
}

// Take returns an Operator forwarding the first n values, then completing
// and cancelling upstream. Take(0) completes without subscribing upstream.
// Errors and completion arriving before the n-th value pass through.
func Take[T any](n int) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			if n <= 0 {
				down.Complete()
				return
			}

			var seen int
			bind(down, src, func(up *Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						if seen >= n {
							return
						}
						seen++
						down.Next(v)
						if seen == n {
							down.Complete()
							up.cancelAfter(down)
						}
					},
					Error:    down.Error,
					Complete: down.Complete,
				}
			})
		})
	}
}

// TakeUntil returns an Operator mirroring its source until notifier emits
// a value, at which point it completes. A notifier error is forwarded, a
// notifier completing without a value is ignored.
func TakeUntil[T, N any](notifier Stream[N]) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			bind(down, notifier, func(nsub *Subscriber[N]) Observer[N] {
				return ObserverFuncs[N]{
					Next: func(N) {
						down.Complete()
						nsub.Unsubscribe()
					},
					Error: down.Error,
				}
			})
			if down.Closed() {
				return
			}
			bind(down, src, func(*Subscriber[T]) Observer[T] {
				return down
			})
		})
	}
}

//***************************************************************************
// Side effects
//***************************************************************************

// Tap returns an Operator calling the matching method of o for every
// signal before forwarding it unchanged. A panic within o is delivered
// downstream as an error wrapping ErrCallbackPanic in place of the signal.
func Tap[T any](o Observer[T]) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			bind(down, src, func(up *Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						if err := guard("tap", func() error {
							o.OnNext(v)
							return nil
						}); err != nil {
							down.Error(err)
							up.cancelAfter(down)
							return
						}
						down.Next(v)
					},
					Error: func(err error) {
						if perr := guard("tap", func() error {
							o.OnError(err)
							return nil
						}); perr != nil {
							err = perr
						}
						down.Error(err)
					},
					Complete: func() {
						if err := guard("tap", func() error {
							o.OnComplete()
							return nil
						}); err != nil {
							down.Error(err)
							return
						}
						down.Complete()
					},
				}
			})
		})
	}
}

// Finalize returns an Operator running action exactly once when the
// subscription ends for any reason: completion, error or cancellation.
// It runs after the terminal signal, if any, was delivered downstream.
func Finalize[T any](action func()) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			bind(down, src, func(*Subscriber[T]) Observer[T] {
				return down
			})
			down.Add(func() {
				// a failing action has nowhere left to be reported.
				_ = guard("finalize", func() error {
					action()
					return nil
				})
			})
		})
	}
}

// Trace returns an Operator writing every signal to logs as it passes,
// tagged with name.
func Trace[T any](logs Logs, name string) Operator[T, T] {
	return Tap[T](ObserverFuncs[T]{
		Next: func(v T) {
			LogMsg("next").String("stream", name).ObjectJSON("value", v).Write(DEBUG, logs)
		},
		Error: func(err error) {
			LogMsg("error").String("stream", name).Err("error", err).Write(ERROR, logs)
		},
		Complete: func() {
			LogMsg("complete").String("stream", name).Write(DEBUG, logs)
		},
	})
}

//***************************************************************************
// Aggregation
//***************************************************************************

// ToArray returns an Operator collecting all values and emitting them as a
// single slice when the source completes. Nothing is emitted if the source
// errors.
func ToArray[T any]() Operator[T, []T] {
	return func(src Stream[T]) Stream[[]T] {
		return Create(func(down *Subscriber[[]T]) {
			var items []T
			bind(down, src, func(*Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						items = append(items, v)
					},
					Error: func(err error) {
						items = nil
						down.Error(err)
					},
					Complete: func() {
						out := make([]T, len(items))
						copy(out, items)
						items = nil

						down.Next(out)
						down.Complete()
					},
				}
			})
		})
	}
}
