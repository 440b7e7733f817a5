package loader

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/entail/internal/assert"
	"github.com/roach88/entail/internal/suite"
)

// Assertion names accepted in the "assert" field of a step.
const (
	OpOk             = "ok"
	OpFail           = "fail"
	OpEqual          = "equal"
	OpNotEqual       = "notEqual"
	OpStrictEqual    = "strictEqual"
	OpNotStrictEqual = "notStrictEqual"
	OpDeepEqual      = "deepEqual"
	OpNotDeepEqual   = "notDeepEqual"
	OpMatch          = "match"
)

var operators = map[string]bool{
	OpOk: true, OpFail: true, OpEqual: true, OpNotEqual: true,
	OpStrictEqual: true, OpNotStrictEqual: true, OpDeepEqual: true,
	OpNotDeepEqual: true, OpMatch: true,
}

var stepFields = map[string]bool{
	"assert": true, "actual": true, "expected": true, "pattern": true, "message": true,
}

// Step is one declared assertion.
type Step struct {
	Assert   string
	Actual   any
	Expected any
	Pattern  any // string for substrings, *regexp.Regexp for /re/
	Message  string
}

// Run applies the step's assertion.
func (s Step) Run(a *assert.Assert) {
	var msg []any
	if s.Message != "" {
		msg = []any{s.Message}
	}
	switch s.Assert {
	case OpOk:
		a.Ok(s.Actual, msg...)
	case OpFail:
		a.Fail(msg...)
	case OpEqual:
		a.Equal(s.Actual, s.Expected, msg...)
	case OpNotEqual:
		a.NotEqual(s.Actual, s.Expected, msg...)
	case OpStrictEqual:
		a.StrictEqual(s.Actual, s.Expected, msg...)
	case OpNotStrictEqual:
		a.NotStrictEqual(s.Actual, s.Expected, msg...)
	case OpDeepEqual:
		a.DeepEqual(s.Actual, s.Expected, msg...)
	case OpNotDeepEqual:
		a.NotDeepEqual(s.Actual, s.Expected, msg...)
	case OpMatch:
		a.Match(s.Actual, s.Pattern, msg...)
	default:
		panic(fmt.Sprintf("unknown assertion %q", s.Assert))
	}
}

// body turns steps into a test body.
func body(steps []Step) suite.Test {
	return func(a *assert.Assert) error {
		for _, s := range steps {
			s.Run(a)
		}
		return nil
	}
}

// parseStep validates one step mapping.
func parseStep(d node) (Step, error) {
	if d.kind != kindMap {
		return Step{}, d.errorf("step must be a mapping")
	}

	var s Step
	for _, e := range d.entries {
		if !stepFields[e.name] {
			return Step{}, e.val.errorf("unknown step field %q", e.name)
		}
		switch e.name {
		case "assert":
			op, ok := e.val.raw.(string)
			if !ok || e.val.kind != kindScalar {
				return Step{}, e.val.errorf("assert must be a string")
			}
			if !operators[op] {
				return Step{}, e.val.errorf("unknown assertion %q (want one of %s)", op, strings.Join(operatorNames(), ", "))
			}
			s.Assert = op
		case "actual":
			s.Actual = e.val.plain()
		case "expected":
			s.Expected = e.val.plain()
		case "pattern":
			text, ok := e.val.raw.(string)
			if !ok || e.val.kind != kindScalar {
				return Step{}, e.val.errorf("pattern must be a string")
			}
			p, err := compilePattern(text)
			if err != nil {
				return Step{}, e.val.errorf("%v", err)
			}
			s.Pattern = p
		case "message":
			text, ok := e.val.raw.(string)
			if !ok || e.val.kind != kindScalar {
				return Step{}, e.val.errorf("message must be a string")
			}
			s.Message = text
		}
	}

	if s.Assert == "" {
		return Step{}, d.errorf("step is missing assert")
	}
	if s.Assert == OpMatch && s.Pattern == nil {
		return Step{}, d.errorf("match step is missing pattern")
	}
	return s, nil
}

// compilePattern reads "/re/" as a regexp and anything else as a substring.
func compilePattern(text string) (any, error) {
	if len(text) >= 2 && strings.HasPrefix(text, "/") && strings.HasSuffix(text, "/") {
		re, err := regexp.Compile(text[1 : len(text)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", text, err)
		}
		return re, nil
	}
	return text, nil
}

func operatorNames() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
