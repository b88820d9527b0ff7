package rxkit

import "sync"

// trampoline runs fn whenever triggered, but never re-entrantly: a trigger
// arriving while fn runs is remembered and fn runs again after returning.
// It lets operators resubscribe from inside a synchronous error without
// growing the stack.
type trampoline struct {
	fn func()

	tm      sync.Mutex
	running bool
	pending bool
}

func newTrampoline(fn func()) *trampoline {
	return &trampoline{fn: fn}
}

// Trigger runs fn or, if it is running already, schedules another run.
func (t *trampoline) Trigger() {
	t.tm.Lock()
	if t.running {
		t.pending = true
		t.tm.Unlock()
		return
	}
	t.running = true
	t.tm.Unlock()

	for {
		t.fn()

		t.tm.Lock()
		if !t.pending {
			t.running = false
			t.tm.Unlock()
			return
		}
		t.pending = false
		t.tm.Unlock()
	}
}

// serial holds the single live subscription of a stage which replaces its
// upstream over time. Setting a new one cancels the previous.
type serial struct {
	sm       sync.Mutex
	current  Subscription
	disposed bool
}

// Set replaces the held subscription, cancelling the previous one. If the
// holder was disposed, sub is cancelled instead.
func (s *serial) Set(sub Subscription) {
	s.sm.Lock()
	if s.disposed {
		s.sm.Unlock()
		sub.Unsubscribe()
		return
	}
	prev := s.current
	s.current = sub
	s.sm.Unlock()

	if prev != nil && prev != sub {
		prev.Unsubscribe()
	}
}

// Cancel cancels the held subscription without disposing the holder.
func (s *serial) Cancel() {
	s.sm.Lock()
	prev := s.current
	s.current = nil
	s.sm.Unlock()

	if prev != nil {
		prev.Unsubscribe()
	}
}

// Unsubscribe cancels the held subscription and any set afterwards.
func (s *serial) Unsubscribe() {
	s.sm.Lock()
	s.disposed = true
	s.sm.Unlock()
	s.Cancel()
}
