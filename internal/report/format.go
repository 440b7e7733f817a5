package report

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/roach88/entail/internal/assert"
	"github.com/roach88/entail/internal/style"
)

const (
	separator   = " ⏵ "
	harnessPath = "github.com/roach88/entail/internal/"
	// Bodies are called from here; nothing past it belongs to the test.
	executeFrame = harnessPath + "runner.(*Runner).Execute"
)

// FormatFailure renders the diagnostic block for a failed unit: a FAIL badge
// with the unit's location, the message and operator, the rendered details
// of an assertion failure, and the filtered stack.
func FormatFailure(p style.Palette, err error, origin assert.Origin) string {
	message := "<nil>"
	if err != nil {
		message = err.Error()
	}
	var operator, details string
	if ae, ok := assert.AsAssertionError(err); ok {
		operator = ae.Operator
		details = ae.Details()
	}

	place := origin.At
	if origin.Name != "" {
		place = append(append([]string{}, origin.At...), `"`+origin.Name+`"`)
	}
	site := ""
	if len(place) > 0 {
		site = " " + p.Site(strings.Join(place, separator)) + " "
	}

	method := ""
	if operator != "" {
		method = p.Title("  (" + operator + ") ")
	}

	body := []string{indent(indent(message) + method)}
	if details != "" {
		body = append(body, "", details)
	}
	body = append(body, "", indent(indent(p.Gray(FormatStack(err)))))

	return "  " + p.Badge(" FAIL ") + site + "\n" + strings.Join(body, "\n")
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FormatStack renders the innermost stack trace recorded in err's chain,
// one "at function (file:line)" per line. Frames of the Go runtime, the
// testing package and the harness itself are left out, as is everything
// from the call into the test body outwards. For a recovered panic only
// the frames below the panic are kept.
func FormatStack(err error) string {
	var st errors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if tracer, ok := e.(stackTracer); ok {
			st = tracer.StackTrace()
		}
	}
	if len(st) == 0 {
		return ""
	}

	pcs := make([]uintptr, len(st))
	for i, f := range st {
		pcs[i] = uintptr(f)
	}

	var frames []runtime.Frame
	iter := runtime.CallersFrames(pcs)
	for {
		frame, more := iter.Next()
		frames = append(frames, frame)
		if !more {
			break
		}
	}

	for i, frame := range frames {
		if frame.Function == "runtime.gopanic" {
			frames = frames[i+1:]
			break
		}
	}

	var lines []string
	for _, frame := range frames {
		if frame.Function == executeFrame {
			break
		}
		if ignored(frame.Function) {
			continue
		}
		lines = append(lines, "at "+frame.Function+" ("+frame.File+":"+strconv.Itoa(frame.Line)+")")
	}
	return strings.Join(lines, "\n")
}

func ignored(function string) bool {
	for _, prefix := range []string{"runtime.", "testing.", "github.com/pkg/errors.", harnessPath + "assert.", harnessPath + "runner."} {
		if strings.HasPrefix(function, prefix) {
			return true
		}
	}
	return function == ""
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}
