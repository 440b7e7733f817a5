package assert

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssert() *Assert {
	return New(context.Background(), Origin{At: []string{"mod.test.yaml", "group"}, Name: "unit"})
}

// raised runs fn and returns the value it panicked with.
func raised(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}

func failure(t *testing.T, fn func()) *AssertionError {
	t.Helper()
	r := raised(fn)
	require.NotNil(t, r, "expected the check to fail")
	ae, ok := r.(*AssertionError)
	require.True(t, ok, "expected *AssertionError, got %T", r)
	return ae
}

func TestOk(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.Ok(1) }))
	assert.Nil(t, raised(func() { a.Ok("x") }))

	ae := failure(t, func() { a.Ok(0) })
	assert.Equal(t, "Expected value to be truthy", ae.Reason)
	assert.Equal(t, "Expected value to be truthy", ae.Error())
	assert.Equal(t, "ok", ae.Operator)
	assert.True(t, ae.Generated())
	assert.Equal(t, "0 == true", ae.Details())
}

func TestFail(t *testing.T) {
	ae := failure(t, func() { newAssert().Fail() })
	assert.Equal(t, "Failed", ae.Message)
	assert.Equal(t, "fail", ae.Operator)
	assert.Empty(t, ae.Details())
}

func TestMessage_ReplacesReason(t *testing.T) {
	ae := failure(t, func() { newAssert().Ok(false, "it is false") })
	assert.Equal(t, "it is false", ae.Error())
	assert.Equal(t, "Expected value to be truthy", ae.Reason)
	assert.False(t, ae.Generated())
}

func TestMessage_ErrorIsRaisedDirectly(t *testing.T) {
	custom := errors.New("need array")
	r := raised(func() { newAssert().Fail(custom) })
	assert.Same(t, custom, r)
}

func TestOriginIsAttached(t *testing.T) {
	ae := failure(t, func() { newAssert().Fail() })
	assert.Equal(t, []string{"mod.test.yaml", "group"}, ae.Origin.At)
	assert.Equal(t, "unit", ae.Origin.Name)
	assert.NotEmpty(t, ae.StackTrace())
}

func TestStrictEqual(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.StrictEqual(1, 1) }))
	assert.Nil(t, raised(func() { a.StrictEqual(math.NaN(), math.NaN()) }))

	ae := failure(t, func() { a.StrictEqual(1, 2) })
	assert.Equal(t, "Expected values to be strictly equal", ae.Message)
	assert.Equal(t, "strictEqual", ae.Operator)
	assert.Equal(t, "++2    (Expected)\n--1    (Actual)\n", ae.Details())

	ae = failure(t, func() { a.StrictEqual(1, 1.0) })
	assert.Contains(t, ae.Details(), "[float64]")

	failure(t, func() { a.StrictEqual([]int{}, []int{}) })
}

func TestNotStrictEqual(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.NotStrictEqual(1, "1") }))
	assert.Nil(t, raised(func() { a.NotStrictEqual([]int{}, []int{}) }))

	ae := failure(t, func() { a.NotStrictEqual(1, 1) })
	assert.Equal(t, "Expected values to be strictly unequal:", ae.Message)
	assert.Equal(t, "notStrictEqual", ae.Operator)
}

func TestEqual(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.Equal("1", 1) }))
	assert.Nil(t, raised(func() { a.Equal(math.NaN(), math.NaN()) }))

	ae := failure(t, func() { a.Equal(map[string]int{"b": 1}, map[string]int{"b": 1}) })
	assert.Equal(t, "Expected values to be loosely equal", ae.Message)
	assert.Equal(t, "equal", ae.Operator)
}

func TestNotEqual(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.NotEqual(1, 2) }))

	ae := failure(t, func() { a.NotEqual(1, 1) })
	assert.Equal(t, "Expected values to be loosely not equal", ae.Message)
	assert.Equal(t, "1 != 1", ae.Details())
}

func TestDeepEqual(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() {
		a.DeepEqual(map[string]any{"a": []int{1}}, map[string]any{"a": []int{1}})
	}))

	ae := failure(t, func() { a.DeepEqual(map[string]int{"a": 1}, map[string]int{"a": 2}) })
	assert.Equal(t, "deepEqual", ae.Operator)
	assert.Contains(t, ae.Details(), `--  "a": 1`)
	assert.Contains(t, ae.Details(), `++  "a": 2`)
}

func TestNotDeepEqual(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.NotDeepEqual([]int{1}, []int{2}) }))

	ae := failure(t, func() { a.NotDeepEqual([]int{1}, []int{1}) })
	assert.Equal(t, "notDeepEqual", ae.Operator)
}

func TestMatch(t *testing.T) {
	a := newAssert()
	assert.Nil(t, raised(func() { a.Match("hello world", "world") }))
	assert.Nil(t, raised(func() { a.Match("hello world", regexp.MustCompile(`^hello`)) }))

	ae := failure(t, func() { a.Match("", "x") })
	assert.Equal(t, `Expected value to include "x" substring`, ae.Message)

	ae = failure(t, func() { a.Match("hello", regexp.MustCompile(`^z`)) })
	assert.Equal(t, "Expected value to match `/^z/` pattern", ae.Message)
	assert.Equal(t, "match", ae.Operator)
}

func TestThrows(t *testing.T) {
	a := newAssert()

	err := a.Throws(func() error { return errors.New("boom") }, nil)
	assert.EqualError(t, err, "boom")

	err = a.Throws(func() error { panic("kaboom") }, regexp.MustCompile("kab"))
	assert.EqualError(t, err, "kaboom")

	ae := failure(t, func() { a.Throws(func() error { return nil }, nil) })
	assert.Equal(t, "Expected function to throw", ae.Message)
	assert.Equal(t, "throws", ae.Operator)

	ae = failure(t, func() { a.Throws(func() error { return errors.New("boom") }, "bang") })
	assert.Equal(t, "Expected function to throw matching exception", ae.Message)
}

func TestThrows_PropagatesAssertionErrors(t *testing.T) {
	a := newAssert()
	ae := failure(t, func() {
		a.Throws(func() error {
			a.StrictEqual(1, 2)
			return nil
		}, nil)
	})
	assert.Equal(t, "strictEqual", ae.Operator)
}

func TestRejects(t *testing.T) {
	a := newAssert()

	err := a.Rejects(func(context.Context) error { return errors.New("nope") }, "no")
	assert.EqualError(t, err, "nope")

	ae := failure(t, func() { a.Rejects(func(context.Context) error { return nil }, nil) })
	assert.Equal(t, "Expected function to return promise that fails", ae.Message)
	assert.Equal(t, "rejects", ae.Operator)
}

func TestRejects_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	a := New(ctx, Origin{})

	r := raised(func() {
		a.Rejects(func(ctx context.Context) error {
			time.Sleep(time.Second)
			return nil
		}, nil)
	})
	err, ok := r.(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAsAssertionError(t *testing.T) {
	ae := failure(t, func() { newAssert().Fail() })
	wrapped := errors.Join(errors.New("context"), ae)

	got, ok := AsAssertionError(wrapped)
	require.True(t, ok)
	assert.Same(t, ae, got)

	_, ok = AsAssertionError(errors.New("plain"))
	assert.False(t, ok)
}
