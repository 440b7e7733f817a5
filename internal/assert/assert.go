// Package assert provides the checks available to a test body.
//
// A failing check panics with an *AssertionError. The runner recovers the
// panic and reports it as a failure, so a body stops at its first failed
// check. Every check accepts an optional trailing message: a string replaces
// the default reason, an error is panicked as is in place of the
// AssertionError.
package assert

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/roach88/entail/internal/diff"
	"github.com/roach88/entail/internal/style"
)

// Pattern tests text, e.g. *regexp.Regexp.
type Pattern = diff.Pattern

// Assert is handed to every test body.
type Assert struct {
	ctx      context.Context
	origin   Origin
	renderer *diff.Renderer
}

// Option configures an Assert.
type Option func(*Assert)

// WithPalette colors rendered details with p.
func WithPalette(p style.Palette) Option {
	return func(a *Assert) {
		a.renderer = diff.NewRenderer(p)
	}
}

// WithRenderer renders details with r.
func WithRenderer(r *diff.Renderer) Option {
	return func(a *Assert) {
		a.renderer = r
	}
}

// New creates an Assert for the unit at origin. ctx bounds Rejects.
func New(ctx context.Context, origin Origin, opts ...Option) *Assert {
	a := &Assert{ctx: ctx, origin: origin}
	for _, opt := range opts {
		opt(a)
	}
	if a.renderer == nil {
		a.renderer = diff.NewRenderer(style.Plain())
	}
	return a
}

// Context returns the context of the running unit.
func (a *Assert) Context() context.Context {
	return a.ctx
}

// Origin returns the location of the unit being checked.
func (a *Assert) Origin() Origin {
	return a.origin
}

// Ok checks that value is truthy.
func (a *Assert) Ok(value any, message ...any) {
	if diff.Truthy(value) {
		return
	}
	a.fail(newAssertionError("Expected value to be truthy", "ok", value, true, messageOf(message), func(actual, _ any) string {
		return diff.Stringify(actual) + " == true"
	}), message)
}

// Fail fails unconditionally.
func (a *Assert) Fail(message ...any) {
	a.fail(newAssertionError("Failed", "fail", nil, nil, messageOf(message), nil), message)
}

// StrictEqual checks that actual and expected are the same value of the
// same type.
func (a *Assert) StrictEqual(actual, expected any, message ...any) {
	if diff.Identical(actual, expected) {
		return
	}
	a.fail(newAssertionError("Expected values to be strictly equal", "strictEqual", actual, expected, messageOf(message), a.renderer.Compare), message)
}

// NotStrictEqual checks that actual and expected are not identical.
func (a *Assert) NotStrictEqual(actual, expected any, message ...any) {
	if !diff.Identical(actual, expected) {
		return
	}
	a.fail(newAssertionError("Expected values to be strictly unequal:", "notStrictEqual", actual, expected, messageOf(message), nil), message)
}

// Equal checks coercive equality.
func (a *Assert) Equal(actual, expected any, message ...any) {
	if diff.LooselyEqual(actual, expected) {
		return
	}
	a.fail(newAssertionError("Expected values to be loosely equal", "equal", actual, expected, messageOf(message), a.renderer.Compare), message)
}

// NotEqual checks coercive inequality.
func (a *Assert) NotEqual(actual, expected any, message ...any) {
	if !diff.LooselyEqual(actual, expected) {
		return
	}
	a.fail(newAssertionError("Expected values to be loosely not equal", "notEqual", actual, expected, messageOf(message), func(actual, expected any) string {
		return diff.Stringify(actual) + " != " + diff.Stringify(expected)
	}), message)
}

// DeepEqual checks structural equality.
func (a *Assert) DeepEqual(actual, expected any, message ...any) {
	if diff.DeepEqual(actual, expected) {
		return
	}
	a.fail(newAssertionError("Expected values to be deeply equal", "deepEqual", actual, expected, messageOf(message), a.renderer.Compare), message)
}

// NotDeepEqual checks that actual and expected differ structurally.
func (a *Assert) NotDeepEqual(actual, expected any, message ...any) {
	if !diff.DeepEqual(actual, expected) {
		return
	}
	a.fail(newAssertionError("Expected values not to be deeply equal", "notDeepEqual", actual, expected, messageOf(message), nil), message)
}

// Match checks that value is truthy and matches pattern. A string pattern
// matches as a substring, anything else must implement Pattern.
func (a *Assert) Match(value any, pattern any, message ...any) {
	if diff.Truthy(value) && matches(textOf(value), pattern) {
		return
	}
	var reason string
	var compare func(actual, expected any) string
	switch p := pattern.(type) {
	case string:
		reason = fmt.Sprintf("Expected value to include %q substring", p)
	case Pattern:
		reason = fmt.Sprintf("Expected value to match `%s` pattern", diff.PatternString(p))
		compare = a.renderer.Compare
	default:
		reason = fmt.Sprintf("Expected value to match %v", pattern)
	}
	a.fail(newAssertionError(reason, "match", value, pattern, messageOf(message), compare), message)
}

// Throws checks that block panics or returns an error and returns what it
// raised. When pattern is not nil the raised error's text must match it.
// An *AssertionError raised inside block propagates unchanged.
func (a *Assert) Throws(block func() error, pattern any, message ...any) error {
	thrown := catch(block)
	if thrown == nil {
		a.fail(newAssertionError("Expected function to throw", "throws", false, true, messageOf(message), nil), message)
	}
	if pattern != nil && !matches(thrown.Error(), pattern) {
		reason := "Expected function to throw matching exception"
		if p, ok := pattern.(Pattern); ok {
			reason = fmt.Sprintf("Expected function to throw exception matching `%s` pattern", diff.PatternString(p))
		}
		a.fail(newAssertionError(reason, "throws", thrown, pattern, messageOf(message), nil), message)
	}
	return thrown
}

// Rejects runs block in its own goroutine and checks that it fails, the
// way Throws does. It gives up when the unit's context is done.
func (a *Assert) Rejects(block func(ctx context.Context) error, pattern any, message ...any) error {
	done := make(chan error, 1)
	go func() {
		done <- recoverFrom(func() error { return block(a.ctx) })
	}()

	var rejected error
	select {
	case rejected = <-done:
	case <-a.ctx.Done():
		panic(errors.Wrap(a.ctx.Err(), "awaiting rejection"))
	}
	if ae, ok := AsAssertionError(rejected); ok {
		panic(ae)
	}

	if rejected == nil {
		a.fail(newAssertionError("Expected function to return promise that fails", "rejects", false, true, messageOf(message), nil), message)
	}
	if pattern != nil && !matches(rejected.Error(), pattern) {
		reason := "Expected function to return matching failing promise"
		if p, ok := pattern.(Pattern); ok {
			reason = fmt.Sprintf("Expected function to return failing promise matching `%s` pattern", diff.PatternString(p))
		}
		a.fail(newAssertionError(reason, "rejects", rejected, pattern, messageOf(message), nil), message)
	}
	return rejected
}

// fail raises err, or the caller's error message in its place.
func (a *Assert) fail(err *AssertionError, message []any) {
	if len(message) > 0 {
		if custom, ok := message[0].(error); ok {
			panic(custom)
		}
	}
	err.Origin = a.origin
	panic(err)
}

// catch runs block and returns what it raised, either by panicking or by
// returning an error. A panicking *AssertionError is re-raised.
func catch(block func() error) error {
	thrown := recoverFrom(block)
	if ae, ok := AsAssertionError(thrown); ok {
		panic(ae)
	}
	return thrown
}

func recoverFrom(block func() error) (thrown error) {
	defer func() {
		if r := recover(); r != nil {
			thrown = panicError(r)
		}
	}()
	return block()
}

// panicError turns a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func matches(text string, pattern any) bool {
	switch p := pattern.(type) {
	case string:
		return strings.Contains(text, p)
	case Pattern:
		return p.MatchString(text)
	default:
		return false
	}
}

func textOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(v)
}

func messageOf(message []any) string {
	if len(message) == 0 || message[0] == nil {
		return ""
	}
	switch m := message[0].(type) {
	case string:
		return m
	case error:
		return m.Error()
	default:
		return fmt.Sprint(m)
	}
}
