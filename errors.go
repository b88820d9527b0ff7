package rxkit

import (
	"fmt"

	"github.com/gokit/errors"
)

// errors ...
var (
	// ErrCallbackPanic is wrapped by errors produced when a callback given to
	// an operator panics.
	ErrCallbackPanic = errors.New("operator callback panicked")

	// ErrProducerPanic is wrapped by errors produced when the producer
	// function of a stream panics.
	ErrProducerPanic = errors.New("stream producer panicked")

	// ErrFutureTimeout is used to reject a TimedFuture which was not
	// resolved in time.
	ErrFutureTimeout = errors.New("Future timed out")

	// ErrFutureStopped is used to reject a Future stopped before resolution.
	ErrFutureStopped = errors.New("Future was stopped")

	// ErrNoValue is used to reject a Future whose stream completed without
	// producing a value.
	ErrNoValue = errors.New("stream completed without a value")
)

// ErrorMessage returns the plain message of err without the call graph
// details carried by wrapped errors.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch pe := err.(type) {
	case *errors.PointingError:
		if pe.Message != "" {
			return pe.Message
		}
		if pe.Parent != nil {
			return ErrorMessage(pe.Parent)
		}
	}
	return err.Error()
}

// panicError turns a recovered panic value into an error wrapping cause.
func panicError(cause error, op string, recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return errors.Wrap(cause, "%s: %s", op, ErrorMessage(err))
	}
	return errors.Wrap(cause, "%s: %s", op, fmt.Sprint(recovered))
}

// guard runs fn, converting a panic into an error wrapping ErrCallbackPanic.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(ErrCallbackPanic, op, r)
		}
	}()
	return fn()
}
