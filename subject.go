package rxkit

import "sync"

// Subject is a hot stream which multicasts the signals pushed into it to
// all current subscribers. Subscribers joining after termination receive
// the terminal signal only.
type Subject[T any] struct {
	sm       sync.Mutex
	subs     []*Subscriber[T]
	terminal *Signal[T]
}

// NewSubject returns a new instance of a Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Stream returns a Stream subscribing to the subject.
func (s *Subject[T]) Stream() Stream[T] {
	return Create(func(down *Subscriber[T]) {
		s.sm.Lock()
		if s.terminal != nil {
			sig := *s.terminal
			s.sm.Unlock()
			down.push(sig)
			return
		}
		s.subs = append(s.subs, down)
		s.sm.Unlock()

		down.Add(func() {
			s.remove(down)
		})
	})
}

// Next delivers v to all current subscribers.
func (s *Subject[T]) Next(v T) {
	s.sm.Lock()
	if s.terminal != nil {
		s.sm.Unlock()
		return
	}
	subs := append([]*Subscriber[T](nil), s.subs...)
	s.sm.Unlock()

	for _, sub := range subs {
		sub.Next(v)
	}
}

// Error terminates the subject and all its subscribers with err.
func (s *Subject[T]) Error(err error) {
	s.terminate(Error[T](err))
}

// Complete terminates the subject and all its subscribers.
func (s *Subject[T]) Complete() {
	s.terminate(Complete[T]())
}

// OnNext implements the Observer interface.
func (s *Subject[T]) OnNext(v T) {
	s.Next(v)
}

// OnError implements the Observer interface.
func (s *Subject[T]) OnError(err error) {
	s.Error(err)
}

// OnComplete implements the Observer interface.
func (s *Subject[T]) OnComplete() {
	s.Complete()
}

// Len returns the number of current subscribers.
func (s *Subject[T]) Len() int {
	s.sm.Lock()
	defer s.sm.Unlock()
	return len(s.subs)
}

func (s *Subject[T]) terminate(sig Signal[T]) {
	s.sm.Lock()
	if s.terminal != nil {
		s.sm.Unlock()
		return
	}
	s.terminal = &sig
	subs := s.subs
	s.subs = nil
	s.sm.Unlock()

	for _, sub := range subs {
		sub.push(sig)
	}
}

func (s *Subject[T]) remove(sub *Subscriber[T]) {
	s.sm.Lock()
	defer s.sm.Unlock()
	for i, current := range s.subs {
		if current == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}
