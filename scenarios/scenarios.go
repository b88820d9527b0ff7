// Package scenarios contains small runnable pipelines demonstrating the
// operators of rxkit. Every scenario reports the signals it observes as
// structured log events into the configured Logs.
package scenarios

import (
	"context"
	"time"

	"github.com/gokit/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gokit/rxkit"
)

// errors ...
var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrNoScheduler     = errors.New("scenario config has no scheduler")

	// errFailure is the error the failing pipelines raise.
	errFailure = errors.New("failure")
)

// Config carries what scenarios run on.
type Config struct {
	// Scheduler drives every timed source, it is required.
	Scheduler rxkit.Scheduler

	// Logs receives one event per observed signal, DrainLog if nil.
	Logs rxkit.Logs

	// Period is the base unit of all timings, one second if zero.
	Period time.Duration
}

func (c *Config) init() error {
	if c.Scheduler == nil {
		return errors.WrapOnly(ErrNoScheduler)
	}
	if c.Logs == nil {
		c.Logs = rxkit.DrainLog{}
	}
	if c.Period <= 0 {
		c.Period = time.Second
	}
	return nil
}

// Scenario is a named pipeline.
type Scenario struct {
	Name    string
	Summary string

	start func(Config, reporter) rxkit.Subscription
}

// Start subscribes the pipeline of the scenario and returns its
// subscription.
func (s Scenario) Start(cfg Config) (rxkit.Subscription, error) {
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return s.start(cfg, reporter{name: s.Name, logs: cfg.Logs}), nil
}

// Names returns the names of all scenarios in presentation order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, sc := range registry {
		names = append(names, sc.Name)
	}
	return names
}

// Lookup returns the scenario with the given name.
func Lookup(name string) (Scenario, error) {
	for _, sc := range registry {
		if sc.Name == name {
			return sc, nil
		}
	}
	return Scenario{}, errors.Wrap(ErrUnknownScenario, "no scenario named %q", name)
}

// Run starts the named scenarios together and waits until all of them
// terminated. If ctx ends first, the remaining ones are cancelled and the
// context error returned. A scenario ending in an error signal is a normal
// outcome, not a failure of Run.
func Run(ctx context.Context, cfg Config, names ...string) error {
	if err := cfg.init(); err != nil {
		return err
	}

	selected := make([]Scenario, 0, len(names))
	for _, name := range names {
		sc, err := Lookup(name)
		if err != nil {
			return err
		}
		selected = append(selected, sc)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sc := range selected {
		sub, err := sc.Start(cfg)
		if err != nil {
			return err
		}

		g.Go(func() error {
			select {
			case <-sub.Done():
				return nil
			case <-ctx.Done():
				sub.Unsubscribe()
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}

//***************************************************************************
// reporter
//***************************************************************************

type reporter struct {
	name string
	logs rxkit.Logs
}

func (r reporter) scope(event *rxkit.LogEvent) {
	event.String("scenario", r.name)
}

func (r reporter) next(v interface{}) {
	rxkit.LogMsg("next", r.scope).ObjectJSON("value", v).Write(rxkit.INFO, r.logs)
}

func (r reporter) fail(err error) {
	rxkit.LogMsg("error", r.scope).Err("error", err).Write(rxkit.ERROR, r.logs)
}

func (r reporter) complete() {
	rxkit.LogMsg("complete", r.scope).Write(rxkit.INFO, r.logs)
}

func (r reporter) finalize() {
	rxkit.LogMsg("finalize", r.scope).Write(rxkit.INFO, r.logs)
}

func observe[T any](r reporter) rxkit.Observer[T] {
	return rxkit.ObserverFuncs[T]{
		Next: func(v T) {
			r.next(v)
		},
		Error:    r.fail,
		Complete: r.complete,
	}
}
