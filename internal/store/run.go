package store

import (
	"time"

	"github.com/roach88/entail/internal/report"
	"github.com/roach88/entail/internal/runner"
)

// Outcome values stored in unit_results.
const (
	OutcomePass = "pass"
	OutcomeFail = "fail"
	OutcomeSkip = "skip"
)

// Run is one recorded test run.
type Run struct {
	ID        string
	StartedAt time.Time
	Bail      bool
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Duration  time.Duration

	// Results is empty in ListRuns output; see UnitResults.
	Results []UnitResult
}

// UnitResult is one reported unit of a run.
type UnitResult struct {
	Seq      int           `json:"seq"`
	Module   string        `json:"module"`
	Path     []string      `json:"path"` // groups below the module
	Name     string        `json:"name"`
	Outcome  string        `json:"outcome"`
	Duration time.Duration `json:"duration_ns"`
	Message  string        `json:"message,omitempty"`
	Operator string        `json:"operator,omitempty"`
}

// FromReport converts a finished report. The id may be empty, in which case
// WriteRun assigns one.
func FromReport(id string, startedAt time.Time, bail bool, rep *report.Report) Run {
	run := Run{
		ID:        id,
		StartedAt: startedAt,
		Bail:      bail,
		Total:     rep.Count(),
		Passed:    len(rep.Passed),
		Failed:    len(rep.Failed),
		Skipped:   len(rep.Skipped),
		Duration:  rep.Duration,
	}

	for i, r := range rep.Results {
		res := UnitResult{Seq: i + 1, Name: r.Unit.Name, Outcome: OutcomeSkip}
		if len(r.Unit.At) > 0 {
			res.Module = r.Unit.At[0]
			res.Path = r.Unit.At[1:]
		}

		switch o := r.Outcome.(type) {
		case *runner.Passed:
			res.Outcome = OutcomePass
			res.Duration = o.Duration
		case *runner.Failed:
			f := report.Describe(*o)
			res.Outcome = OutcomeFail
			res.Duration = o.Duration
			res.Message = f.Message
			res.Operator = f.Operator
		}
		run.Results = append(run.Results, res)
	}
	return run
}
