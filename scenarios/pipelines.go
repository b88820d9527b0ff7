package scenarios

import (
	"time"

	"github.com/gokit/rxkit"
)

var registry = []Scenario{
	{
		Name:    "tap",
		Summary: "observes three doubled and incremented ticks from inside the pipe",
		start:   startTap,
	},
	{
		Name:    "toArray",
		Summary: "collects three ticks into one slice",
		start:   startToArray,
	},
	{
		Name:    "delay",
		Summary: "shifts 1, 2, 3 one period later",
		start:   startDelay,
	},
	{
		Name:    "delayWhen",
		Summary: "holds odd ticks back two periods, reordering them",
		start:   startDelayWhen,
	},
	{
		Name:    "catchError",
		Summary: "replaces a failing counter by a fresh five value counter",
		start:   startCatchError,
	},
	{
		Name:    "retry",
		Summary: "resubscribes a counter failing on odd ticks three times",
		start:   startRetry,
	},
	{
		Name:    "retryWhen",
		Summary: "resubscribes a failing counter whenever a slower notifier ticks",
		start:   startRetryWhen,
	},
	{
		Name:    "finalize",
		Summary: "runs a cleanup action once five ticks were taken",
		start:   startFinalize,
	},
}

func double(v int) (int, error) {
	return v * 2, nil
}

func increment(v int) (int, error) {
	return v + 1, nil
}

func startTap(cfg Config, r reporter) rxkit.Subscription {
	return rxkit.Interval(cfg.Scheduler, cfg.Period).
		Pipe(
			rxkit.Take[int](3),
			rxkit.Map(double),
			rxkit.Map(increment),
			rxkit.Tap(observe[int](r)),
		).
		Subscribe(rxkit.ObserverFuncs[int]{})
}

func startToArray(cfg Config, r reporter) rxkit.Subscription {
	ticks := rxkit.Interval(cfg.Scheduler, cfg.Period).Pipe(rxkit.Take[int](3))
	return rxkit.ToArray[int]()(ticks).Subscribe(observe[[]int](r))
}

func startDelay(cfg Config, r reporter) rxkit.Subscription {
	return rxkit.Of(1, 2, 3).
		Pipe(rxkit.Delay[int](cfg.Scheduler, cfg.Period)).
		Subscribe(observe[int](r))
}

func startDelayWhen(cfg Config, r reporter) rxkit.Subscription {
	hold := func(v int) (rxkit.Stream[int], error) {
		wait := time.Duration(v%2) * 2 * cfg.Period
		return rxkit.Of(v).Pipe(rxkit.Delay[int](cfg.Scheduler, wait)), nil
	}

	return rxkit.Interval(cfg.Scheduler, cfg.Period).
		Pipe(
			rxkit.Take[int](3),
			rxkit.DelayWhen(hold),
		).
		Subscribe(observe[int](r))
}

func startCatchError(cfg Config, r reporter) rxkit.Subscription {
	evenOnly := func(v int) (int, error) {
		if v%2 == 0 {
			return v, nil
		}
		return 0, errFailure
	}

	replace := func(error) (rxkit.Stream[int], error) {
		return rxkit.Interval(cfg.Scheduler, cfg.Period).Pipe(rxkit.Take[int](5)), nil
	}

	return rxkit.Interval(cfg.Scheduler, cfg.Period).
		Pipe(
			rxkit.Take[int](10),
			rxkit.Map(evenOnly),
			rxkit.CatchError(replace),
			rxkit.Map(double),
		).
		Subscribe(observe[int](r))
}

// failOnOdd passes even ticks and errors on odd ones.
func failOnOdd(v int) (rxkit.Stream[int], error) {
	return rxkit.Iif(
		func() bool { return v%2 == 0 },
		rxkit.Of(v),
		rxkit.ThrowWith[int](func() error { return errFailure }),
	), nil
}

func startRetry(cfg Config, r reporter) rxkit.Subscription {
	return rxkit.SwitchMap(failOnOdd)(rxkit.Interval(cfg.Scheduler, cfg.Period)).
		Pipe(
			rxkit.Map(increment),
			rxkit.Retry[int](3),
		).
		Subscribe(observe[int](r))
}

func startRetryWhen(cfg Config, r reporter) rxkit.Subscription {
	notifier := func(rxkit.Stream[error]) rxkit.Stream[int] {
		return rxkit.Interval(cfg.Scheduler, 3*cfg.Period).Pipe(rxkit.Take[int](3))
	}

	return rxkit.SwitchMap(failOnOdd)(rxkit.Interval(cfg.Scheduler, cfg.Period)).
		Pipe(
			rxkit.Map(increment),
			rxkit.RetryWhen[int](notifier),
		).
		Subscribe(observe[int](r))
}

func startFinalize(cfg Config, r reporter) rxkit.Subscription {
	return rxkit.Interval(cfg.Scheduler, cfg.Period).
		Pipe(
			rxkit.Finalize[int](r.finalize),
			rxkit.Take[int](5),
			rxkit.Map(increment),
		).
		Subscribe(observe[int](r))
}
