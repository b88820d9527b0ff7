package rxkit

import (
	"sync"
	"time"

	"github.com/gokit/rxkit/mailbox"
)

type delayed[T any] struct {
	due time.Time
	sig Signal[T]
}

// Delay returns an Operator shifting every signal, values, error and
// completion alike, later by d on s. Relative order is kept.
func Delay[T any](s Scheduler, d time.Duration) Operator[T, T] {
	if d < 0 {
		d = 0
	}

	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			var (
				dm    sync.Mutex
				armed bool
				token CancelToken
			)
			pending := mailbox.NewQueue[delayed[T]]()

			var flush func()
			flush = func() {
				now := s.Now()
				for {
					dm.Lock()
					head, ok := pending.Peek()
					if !ok {
						armed = false
						dm.Unlock()
						return
					}
					if head.due.After(now) {
						token = s.ScheduleAfter(head.due.Sub(now), flush)
						dm.Unlock()
						return
					}
					pending.Pop()
					dm.Unlock()

					down.push(head.sig)
				}
			}

			enqueue := func(sig Signal[T]) {
				pending.Push(delayed[T]{due: s.Now().Add(d), sig: sig})

				dm.Lock()
				defer dm.Unlock()
				if armed {
					return
				}
				armed = true
				token = s.ScheduleAfter(d, flush)
			}

			down.Add(func() {
				dm.Lock()
				defer dm.Unlock()
				if token != nil {
					token.Cancel()
				}
				pending.Clear()
			})

			bind(down, src, func(*Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						enqueue(Next(v))
					},
					Error: func(err error) {
						enqueue(Error[T](err))
					},
					Complete: func() {
						enqueue(Complete[T]())
					},
				}
			})
		})
	}
}

// DelayWhen returns an Operator holding back each value until the trigger
// stream selector returns for it emits its first value or completes.
// Values are released in trigger order, not arrival order. Completion of
// the source waits until every pending trigger fired. Errors of the source,
// a trigger or the selector are forwarded immediately.
func DelayWhen[T, D any](selector func(T) (Stream[D], error)) Operator[T, T] {
	return func(src Stream[T]) Stream[T] {
		return Create(func(down *Subscriber[T]) {
			var (
				dm     sync.Mutex
				active int
				ended  bool
			)

			tryComplete := func() {
				dm.Lock()
				finished := ended && active == 0
				dm.Unlock()
				if finished {
					down.Complete()
				}
			}

			bind(down, src, func(up *Subscriber[T]) Observer[T] {
				return ObserverFuncs[T]{
					Next: func(v T) {
						var trigger Stream[D]
						if err := guard("delayWhen", func() (err error) {
							trigger, err = selector(v)
							return err
						}); err != nil {
							down.Error(err)
							up.cancelAfter(down)
							return
						}

						dm.Lock()
						active++
						dm.Unlock()

						var fired bool
						release := func() {
							if fired {
								return
							}
							fired = true
							down.Next(v)

							dm.Lock()
							active--
							dm.Unlock()
							tryComplete()
						}

						bind(down, trigger, func(tsub *Subscriber[D]) Observer[D] {
							return ObserverFuncs[D]{
								Next: func(D) {
									release()
									tsub.Unsubscribe()
								},
								Error:    down.Error,
								Complete: release,
							}
						})
					},
					Error: down.Error,
					Complete: func() {
						dm.Lock()
						ended = true
						dm.Unlock()
						tryComplete()
					},
				}
			})
		})
	}
}
