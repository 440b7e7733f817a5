// Package entail is a convention-driven test harness.
//
// Suites are plain values: a module exports names, and names starting with
// "test" are units. Groups nest, and name prefixes or group flags select
// which units run:
//
//	m := entail.Module{Name: "math", Exports: *entail.NewGroup(
//		entail.T("test add", func(a *entail.Assert) error {
//			a.StrictEqual(1+1, 2)
//			return nil
//		}),
//		entail.G("test mul", entail.NewGroup().
//			Test("by zero", func(a *entail.Assert) error {
//				a.StrictEqual(3*0, 0)
//				return nil
//			})),
//	)}
//	rep, err := entail.Test(ctx, os.Stdout, []entail.Module{m})
//
// Exports named "skip test..." or "only test..." and members prefixed with
// "skip " or "only " change the mode. Once any only unit is seen, every
// other unit is skipped.
package entail

import (
	"context"
	"io"
	"iter"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/entail/internal/assert"
	"github.com/roach88/entail/internal/logging"
	"github.com/roach88/entail/internal/report"
	"github.com/roach88/entail/internal/runner"
	"github.com/roach88/entail/internal/style"
	"github.com/roach88/entail/internal/suite"
)

type (
	Assert         = assert.Assert
	AssertionError = assert.AssertionError
	TestFunc       = suite.Test
	Entry          = suite.Entry
	Group          = suite.Group
	Suite          = suite.Group
	Module         = suite.Module
	Unit           = suite.Unit
	Mode           = suite.Mode
	Event          = runner.Event
	Report         = report.Report
)

var (
	// NewGroup builds a group from entries.
	NewGroup = suite.New
	// T declares a test entry.
	T = suite.T
	// G declares a group entry.
	G = suite.G
)

// Options controls a run.
type Options struct {
	Bail    bool
	Palette style.Palette
	Logger  logrus.FieldLogger
	Clock   runner.Clock
}

// Option sets a field of Options.
type Option func(*Options)

// WithBail stops after the first failing unit.
func WithBail(bail bool) Option {
	return func(o *Options) { o.Bail = bail }
}

// WithPalette colors reporter output and assertion details.
func WithPalette(p style.Palette) Option {
	return func(o *Options) { o.Palette = p }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithClock replaces the clock used to time units.
func WithClock(c runner.Clock) Option {
	return func(o *Options) { o.Clock = c }
}

func options(opts []Option) Options {
	o := Options{Palette: style.Plain(), Logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) runner() []runner.Option {
	ro := []runner.Option{
		runner.WithBail(o.Bail),
		runner.WithLogger(o.Logger),
		runner.WithPalette(o.Palette),
	}
	if o.Clock != nil {
		ro = append(ro, runner.WithClock(o.Clock))
	}
	return ro
}

// Resolve yields the units of modules with their final mode, in order.
func Resolve(modules []Module) iter.Seq[Unit] {
	return suite.Resolve(modules)
}

// Run executes the units of modules in the background and streams their
// events. The channel closes when the run ends.
func Run(ctx context.Context, modules []Module, opts ...Option) <-chan Event {
	o := options(opts)
	return runner.Events(ctx, suite.Resolve(modules), o.runner()...)
}

// Test runs modules, writes progress and totals to w, and returns the
// report. The error is non-nil only when the run could not complete, for
// a cancelled context or a failed write; failing units are in the report.
func Test(ctx context.Context, w io.Writer, modules []Module, opts ...Option) (*Report, error) {
	o := options(opts)
	r := runner.New(o.runner()...)
	rp := report.New(w, report.WithPalette(o.Palette), report.WithLogger(o.Logger))

	events := make(chan Event, runner.DefaultBuffer)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.Run(ctx, suite.Resolve(modules), events)
	})

	var rep *Report
	g.Go(func() error {
		var err error
		rep, err = rp.Consume(ctx, events)
		return err
	})

	err := g.Wait()
	return rep, err
}
