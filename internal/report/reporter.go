package report

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/roach88/entail/internal/logging"
	"github.com/roach88/entail/internal/runner"
	"github.com/roach88/entail/internal/style"
)

// Glyphs printed for each finished unit.
const (
	GlyphSkip = "◌ "
	GlyphPass = "⦿ "
	GlyphFail = "✘ "
)

// Reporter writes progress for an event stream.
type Reporter struct {
	w       io.Writer
	palette style.Palette
	logger  logrus.FieldLogger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithPalette sets the output colors. The default is plain text.
func WithPalette(p style.Palette) Option {
	return func(r *Reporter) {
		r.palette = p
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Reporter) {
		r.logger = l
	}
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w, palette: style.Plain(), logger: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Consume reads events until the channel closes and returns the report.
//
// Output is organized by path: a header whenever the module or group
// changes, a glyph per unit, and when a group ends its pass/total tally
// followed by the diagnostics of its failures. Totals close the output.
//
// If ctx ends first, Consume returns the report so far with ctx's error.
// A write error is returned once the stream is drained.
func (r *Reporter) Consume(ctx context.Context, events <-chan runner.Event) (*Report, error) {
	st := &fold{out: &errWriter{w: r.w}, palette: r.palette}
	rep := &Report{}

	for {
		var ev runner.Event
		var ok bool
		select {
		case ev, ok = <-events:
		case <-ctx.Done():
			return rep, ctx.Err()
		}
		if !ok {
			break
		}

		switch ev.Kind() {
		case runner.KindAt, runner.KindSkip, runner.KindTest:
			st.moveTo(ev.Path())
		}

		switch ev.Kind() {
		case runner.KindSkip:
			st.skip++
			rep.Skipped = append(rep.Skipped, *ev.Skip)
			rep.Results = append(rep.Results, Result{Unit: *ev.Skip})
			st.write(r.palette.Gray(GlyphSkip))
		case runner.KindPass:
			st.pass++
			rep.Passed = append(rep.Passed, *ev.Pass)
			rep.Results = append(rep.Results, Result{Unit: ev.Pass.Unit, Outcome: ev.Pass})
			rep.Duration += ev.Pass.Duration
			st.write(r.palette.Gray(GlyphPass))
		case runner.KindFail:
			st.fail++
			st.pending = append(st.pending, *ev.Fail)
			rep.Failed = append(rep.Failed, *ev.Fail)
			rep.Results = append(rep.Results, Result{Unit: ev.Fail.Unit, Outcome: ev.Fail})
			rep.Duration += ev.Fail.Duration
			st.write(r.palette.Red(GlyphFail))
			r.logger.WithFields(logrus.Fields{
				"path": ev.Fail.Unit.At,
				"unit": ev.Fail.Unit.Name,
			}).WithError(ev.Fail.Err).Debug("unit failed")
		}
	}

	st.tally()
	if len(st.pending) > 0 {
		for _, f := range st.pending {
			st.write("\n" + FormatFailure(r.palette, f.Err, f.Unit.Origin()) + "\n")
		}
		st.write("\n")
	}
	st.write(Totals(r.palette, rep))

	return rep, st.out.err
}

// Totals renders the closing summary block.
func Totals(p style.Palette, rep *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\nTotal:     %d", rep.Count())
	b.WriteString(p.Status(fmt.Sprintf("\nPassed:    %d", len(rep.Passed)), rep.OK()))
	failed := fmt.Sprintf("\nFailed:    %d", len(rep.Failed))
	if !rep.OK() {
		failed = p.Red(failed)
	}
	b.WriteString(failed)
	skipped := fmt.Sprintf("\nSkipped:   %d", len(rep.Skipped))
	if len(rep.Skipped) > 0 {
		skipped = p.Yellow(skipped)
	}
	b.WriteString(skipped)
	fmt.Fprintf(&b, "\nDuration:  %.2fms\n\n", milliseconds(rep.Duration))
	return b.String()
}

// fold is the reporter's running state.
type fold struct {
	out     *errWriter
	palette style.Palette

	cursor  []string
	started bool

	pass, fail, skip int
	pending          []runner.Failed
}

func (f *fold) write(s string) {
	f.out.WriteString(s)
}

// moveTo flushes the current group and prints headers when at differs from
// the cursor.
func (f *fold) moveTo(at []string) {
	if f.started && slices.Equal(f.cursor, at) {
		return
	}

	f.tally()
	for _, failed := range f.pending {
		f.write("\n" + FormatFailure(f.palette, failed.Err, failed.Unit.Origin()))
	}
	f.pending = nil
	f.headers(at)

	f.cursor = at
	f.started = true
	f.pass, f.fail, f.skip = 0, 0, 0
}

func (f *fold) tally() {
	total := f.pass + f.fail + f.skip
	if total == 0 {
		return
	}
	f.write(f.palette.Status(fmt.Sprintf("  (%d / %d)\n", f.pass, total), f.fail == 0))
}

// headers prints the module header when the module changes and a header
// for every group level from the first one that differs.
func (f *fold) headers(at []string) {
	if len(at) == 0 {
		return
	}
	var before []string
	if f.started {
		before = f.cursor
	}

	changed := len(before) == 0 || before[0] != at[0]
	if changed {
		f.write("\n\n" + f.palette.Header(at[0]) + " ")
	}
	for level, name := range at[1:] {
		if !changed && (level+1 >= len(before) || before[level+1] != name) {
			changed = true
		}
		if changed {
			f.write("\n" + strings.Repeat("  ", level) + name + " ")
		}
	}
	if changed {
		return
	}
	// at is an ancestor of the cursor: repeat its innermost header.
	if depth := len(at) - 1; depth > 0 {
		f.write("\n" + strings.Repeat("  ", depth-1) + at[depth] + " ")
	} else {
		f.write("\n\n" + f.palette.Header(at[0]) + " ")
	}
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) WriteString(s string) {
	if e.err != nil || s == "" {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}
