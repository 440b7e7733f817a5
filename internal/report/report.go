// Package report folds a runner's event stream into progress text and a
// final Report.
package report

import (
	"time"

	"github.com/roach88/entail/internal/assert"
	"github.com/roach88/entail/internal/runner"
	"github.com/roach88/entail/internal/suite"
)

// Report is the outcome of a whole run.
type Report struct {
	Passed   []runner.Passed
	Failed   []runner.Failed
	Skipped  []suite.Unit
	Duration time.Duration

	// Results holds every reported unit in stream order.
	Results []Result
}

// Result is one reported unit. Outcome is nil for skipped units.
type Result struct {
	Unit    suite.Unit
	Outcome runner.Outcome
}

// OK reports whether nothing failed.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Count returns the number of units that were reported.
func (r *Report) Count() int {
	return len(r.Passed) + len(r.Failed) + len(r.Skipped)
}

// Summary is a serializable view of a Report.
type Summary struct {
	Total      int       `json:"total"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	DurationMS float64   `json:"duration_ms"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Failure describes one failed unit.
type Failure struct {
	Path     []string `json:"path"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
	Operator string   `json:"operator,omitempty"`
	Details  string   `json:"details,omitempty"`
}

// Summary flattens the report.
func (r *Report) Summary() Summary {
	s := Summary{
		Total:      r.Count(),
		Passed:     len(r.Passed),
		Failed:     len(r.Failed),
		Skipped:    len(r.Skipped),
		DurationMS: milliseconds(r.Duration),
	}
	for _, f := range r.Failed {
		s.Failures = append(s.Failures, Describe(f))
	}
	return s
}

// Describe extracts the reportable facts of a failure.
func Describe(f runner.Failed) Failure {
	out := Failure{Path: f.Unit.At, Name: f.Unit.Name}
	if f.Err != nil {
		out.Message = f.Err.Error()
	}
	if ae, ok := assert.AsAssertionError(f.Err); ok {
		out.Operator = ae.Operator
		out.Details = ae.Details()
	}
	return out
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
