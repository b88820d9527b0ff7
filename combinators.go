package rxkit

import "sync"

// SwitchMap returns an Operator mapping every value to an inner stream and
// mirroring only the most recent one: a new value cancels the previous
// inner stream. The output completes once the source and the last inner
// stream completed. Any error is forwarded.
func SwitchMap[T, U any](fn func(T) (Stream[U], error)) Operator[T, U] {
	return func(src Stream[T]) Stream[U] {
		return Create(func(down *Subscriber[U]) {
			var (
				sm          sync.Mutex
				seq         int
				innerActive bool
				ended       bool
				inner       serial
			)
			down.Add(inner.Unsubscribe)

			tryComplete := func() {
				sm.Lock()
				finished := ended && !innerActive
				sm.Unlock()
				if finished {
					down.Complete()
				}
			}

			bind(down, src, func(up *Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						var next Stream[U]
						if err := guard("switchMap", func() (err error) {
							next, err = fn(v)
							return err
						}); err != nil {
							down.Error(err)
							up.cancelAfter(down)
							return
						}

						inner.Cancel()

						sm.Lock()
						seq++
						id := seq
						innerActive = true
						sm.Unlock()

						isub := upstream[U](down)
						isub.observer = ObserverFuncs[U]{
							Next:  down.Next,
							Error: down.Error,
							Complete: func() {
								sm.Lock()
								if seq == id {
									innerActive = false
								}
								sm.Unlock()
								tryComplete()
							},
						}

						inner.Set(isub)
						isub.Add(down.track(isub.Unsubscribe, isub.halt))
						next.run(isub)
					},
					Error: down.Error,
					Complete: func() {
						sm.Lock()
						ended = true
						sm.Unlock()
						tryComplete()
					},
				}
			})
		})
	}
}

// Merge returns a Stream mirroring all streams concurrently. It completes
// once every stream completed and errors as soon as any of them errors.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	return Create(func(down *Subscriber[T]) {
		if len(streams) == 0 {
			down.Complete()
			return
		}

		var mm sync.Mutex
		remaining := len(streams)

		for _, stream := range streams {
			if down.Closed() {
				return
			}

			bind(down, stream, func(*Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next:  down.Next,
					Error: down.Error,
					Complete: func() {
						mm.Lock()
						remaining--
						finished := remaining == 0
						mm.Unlock()
						if finished {
							down.Complete()
						}
					},
				}
			})
		}
	})
}

// Concat returns a Stream mirroring streams one after another, subscribing
// to each only once the previous completed.
func Concat[T any](streams ...Stream[T]) Stream[T] {
	return Create(func(down *Subscriber[T]) {
		var (
			next int
			t    *trampoline
		)

		t = newTrampoline(func() {
			if down.Closed() {
				return
			}
			if next >= len(streams) {
				down.Complete()
				return
			}

			stream := streams[next]
			next++

			bind(down, stream, func(*Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next:     down.Next,
					Error:    down.Error,
					Complete: t.Trigger,
				}
			})
		})
		t.Trigger()
	})
}
