package assert

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Origin locates the unit an assertion belongs to: the module and group
// path followed by the unit name.
type Origin struct {
	At   []string
	Name string
}

// AssertionError is the failure raised by a failing check.
//
// Message is the caller's message when one was given, otherwise Reason.
// Details renders the actual/expected comparison on first use and caches it.
type AssertionError struct {
	Reason   string
	Operator string
	Actual   any
	Expected any
	Message  string
	Origin   Origin

	compare func(actual, expected any) string
	once    sync.Once
	details string
	stack   errors.StackTrace
}

func newAssertionError(reason, operator string, actual, expected any, message string, compare func(actual, expected any) string) *AssertionError {
	if message == "" {
		message = reason
	}
	return &AssertionError{
		Reason:   reason,
		Operator: operator,
		Actual:   actual,
		Expected: expected,
		Message:  message,
		compare:  compare,
		stack:    callers(4),
	}
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return e.Message
}

// Generated reports whether the message is the default reason.
func (e *AssertionError) Generated() bool {
	return e.Message == e.Reason
}

// Details returns the rendered comparison, or "" for checks without one.
func (e *AssertionError) Details() string {
	e.once.Do(func() {
		if e.compare != nil {
			e.details = e.compare(e.Actual, e.Expected)
		}
	})
	return e.details
}

// StackTrace returns the call stack captured when the check failed. It has
// the same shape as the traces recorded by github.com/pkg/errors.
func (e *AssertionError) StackTrace() errors.StackTrace {
	return e.stack
}

// AsAssertionError unwraps err to an *AssertionError.
func AsAssertionError(err error) (*AssertionError, bool) {
	var ae *AssertionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func callers(skip int) errors.StackTrace {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	st := make(errors.StackTrace, n)
	for i := 0; i < n; i++ {
		st[i] = errors.Frame(pcs[i])
	}
	return st
}
