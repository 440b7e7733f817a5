package runner

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/roach88/entail/internal/assert"
	"github.com/roach88/entail/internal/logging"
	"github.com/roach88/entail/internal/style"
	"github.com/roach88/entail/internal/suite"
)

// DefaultBuffer is the capacity of the channel returned by Events.
const DefaultBuffer = 16

// Clock supplies timestamps for unit durations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AssertFactory builds the Assert handed to a unit's body.
type AssertFactory func(ctx context.Context, u suite.Unit) *assert.Assert

// Runner executes units sequentially.
type Runner struct {
	bail      bool
	clock     Clock
	logger    logrus.FieldLogger
	newAssert AssertFactory
}

// Option configures a Runner.
type Option func(*Runner)

// WithBail stops the run after the first failure.
func WithBail(bail bool) Option {
	return func(r *Runner) {
		r.bail = bail
	}
}

// WithClock replaces the wall clock used to time units.
func WithClock(c Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithLogger sets the logger for per-unit debug logs.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithAssert replaces the Assert factory.
func WithAssert(f AssertFactory) Option {
	return func(r *Runner) {
		r.newAssert = f
	}
}

// WithPalette colors assertion details with p.
func WithPalette(p style.Palette) Option {
	return WithAssert(func(ctx context.Context, u suite.Unit) *assert.Assert {
		return assert.New(ctx, u.Origin(), assert.WithPalette(p))
	})
}

// New creates a Runner. By default it does not bail, uses the wall clock,
// and logs nothing.
func New(opts ...Option) *Runner {
	r := &Runner{
		clock:  systemClock{},
		logger: logging.Discard(),
		newAssert: func(ctx context.Context, u suite.Unit) *assert.Assert {
			return assert.New(ctx, u.Origin())
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes units and sends their events to out, closing out when done.
//
// It returns the context's error when cancelled between units or while
// blocked on a send, and nil otherwise, including when it stops early
// because of bail.
func (r *Runner) Run(ctx context.Context, units iter.Seq[suite.Unit], out chan<- Event) error {
	defer close(out)

	send := func(ev Event) error {
		select {
		case out <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var cursor []string
	started := false
	for u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !started || !slices.Equal(cursor, u.At) {
			started = true
			cursor = u.At
			if err := send(Event{At: slices.Clone(u.At)}); err != nil {
				return err
			}
		}

		log := r.logger.WithFields(logrus.Fields{
			"unit": u.Name,
			"path": u.At,
			"mode": u.Mode,
		})

		if u.Mode == suite.ModeSkip {
			log.Debug("skipping unit")
			if err := send(Event{Skip: &u}); err != nil {
				return err
			}
			continue
		}

		if err := send(Event{Test: &u}); err != nil {
			return err
		}
		log.Debug("running unit")

		switch o := r.Execute(u, r.newAssert(ctx, u)).(type) {
		case *Passed:
			log.WithField("duration", o.Duration).Debug("unit passed")
			if err := send(Event{Pass: o}); err != nil {
				return err
			}
		case *Failed:
			log.WithField("duration", o.Duration).WithError(o.Err).Debug("unit failed")
			if err := send(Event{Fail: o}); err != nil {
				return err
			}
			if r.bail {
				log.Info("bailing after first failure")
				return nil
			}
		}
	}
	return nil
}

// Execute runs one unit's body and turns its result into an Outcome.
// Returned errors and panics both become *Failed. Assertion failures get
// the unit as their origin; other panics are wrapped with a stack trace.
func (r *Runner) Execute(u suite.Unit, a *assert.Assert) (out Outcome) {
	start := r.clock.Now()
	failed := func(err error) *Failed {
		if ae, ok := assert.AsAssertionError(err); ok {
			ae.Origin = u.Origin()
		}
		return &Failed{Unit: u, Duration: r.clock.Now().Sub(start), Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			out = failed(panicError(p))
		}
	}()

	if u.Test == nil {
		return failed(errors.Errorf("unit %q has no body", u.Name))
	}
	if err := u.Test(a); err != nil {
		return failed(err)
	}
	return &Passed{Unit: u, Duration: r.clock.Now().Sub(start)}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func panicError(p any) error {
	switch v := p.(type) {
	case *assert.AssertionError:
		return v
	case stackTracer:
		if err, ok := v.(error); ok {
			return err
		}
	case error:
		return errors.WithStack(v)
	}
	return errors.Errorf("panic: %v", p)
}

// Events starts a Runner in its own goroutine and returns its event stream.
func Events(ctx context.Context, units iter.Seq[suite.Unit], opts ...Option) <-chan Event {
	r := New(opts...)
	out := make(chan Event, DefaultBuffer)
	go func() {
		if err := r.Run(ctx, units, out); err != nil {
			r.logger.WithError(err).Debug("run stopped")
		}
	}()
	return out
}
