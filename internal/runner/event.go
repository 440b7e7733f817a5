package runner

import (
	"time"

	"github.com/roach88/entail/internal/suite"
)

// EventKind reports which field of an Event is set.
type EventKind int

const (
	// KindAt moves to a new module or group path.
	KindAt EventKind = iota + 1
	// KindSkip reports a skipped unit.
	KindSkip
	// KindTest announces that a unit is starting.
	KindTest
	// KindPass reports a unit that passed.
	KindPass
	// KindFail reports a unit that failed.
	KindFail
)

func (k EventKind) String() string {
	switch k {
	case KindAt:
		return "at"
	case KindSkip:
		return "skip"
	case KindTest:
		return "test"
	case KindPass:
		return "pass"
	case KindFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Event is one step of a run. Exactly one field is set.
type Event struct {
	At   []string
	Skip *suite.Unit
	Test *suite.Unit
	Pass *Passed
	Fail *Failed
}

// Kind reports which field is set, or 0 for the zero Event.
func (e Event) Kind() EventKind {
	switch {
	case e.Skip != nil:
		return KindSkip
	case e.Test != nil:
		return KindTest
	case e.Pass != nil:
		return KindPass
	case e.Fail != nil:
		return KindFail
	case e.At != nil:
		return KindAt
	default:
		return 0
	}
}

// Path returns the unit path the event belongs to.
func (e Event) Path() []string {
	switch e.Kind() {
	case KindAt:
		return e.At
	case KindSkip:
		return e.Skip.At
	case KindTest:
		return e.Test.At
	case KindPass:
		return e.Pass.Unit.At
	case KindFail:
		return e.Fail.Unit.At
	default:
		return nil
	}
}

// Outcome is the result of executing one unit: *Passed or *Failed.
type Outcome interface {
	Elapsed() time.Duration
	outcome()
}

// Passed is a unit whose body returned nil.
type Passed struct {
	Unit     suite.Unit
	Duration time.Duration
}

// Failed is a unit whose body returned an error or panicked.
type Failed struct {
	Unit     suite.Unit
	Duration time.Duration
	Err      error
}

func (p *Passed) Elapsed() time.Duration { return p.Duration }
func (f *Failed) Elapsed() time.Duration { return f.Duration }

func (*Passed) outcome() {}
func (*Failed) outcome() {}
