package rxkit

import "github.com/gokit/es"

// Eventer publishes lifecycle events to subscribed handlers by decorating
// the gokit es event implementation.
//
// Handlers run on the publishing goroutine and must not stop their own
// subscription from within the handler.
type Eventer struct {
	publish   func(interface{})
	subscribe func(handler func(interface{}), predicate func(interface{}) bool) Watcher
}

// NewEventer returns a instance of a Eventer.
func NewEventer() *Eventer {
	stream := es.New()
	return &Eventer{
		publish: stream.Publish,
		subscribe: func(handler func(interface{}), predicate func(interface{}) bool) Watcher {
			return stream.Subscribe(func(m interface{}) {
				handler(m)
			}).WithPredicate(func(m interface{}) bool {
				return predicate(m)
			})
		},
	}
}

// Publish publishes a giving event.
func (e *Eventer) Publish(m interface{}) {
	e.publish(m)
}

// Subscribe adds a giving handler, only receiving events for which
// predicate returns true. A nil predicate accepts all events.
func (e *Eventer) Subscribe(handler func(interface{}), predicate func(interface{}) bool) Watcher {
	if predicate == nil {
		predicate = func(interface{}) bool { return true }
	}
	return e.subscribe(handler, predicate)
}
