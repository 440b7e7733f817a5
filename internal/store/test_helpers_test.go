package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/entail/internal/testutil"
)

// createTestStore opens a store in a temp dir with sequential run ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one result of each outcome.
func createTestRun(startedAt time.Time) Run {
	return Run{
		StartedAt: startedAt,
		Total:     3,
		Passed:    1,
		Failed:    1,
		Skipped:   1,
		Duration:  3 * time.Millisecond,
		Results: []UnitResult{
			{Seq: 1, Module: "a.test.yaml", Path: []string{}, Name: "test one", Outcome: OutcomePass, Duration: time.Millisecond},
			{Seq: 2, Module: "a.test.yaml", Path: []string{"test group"}, Name: "two", Outcome: OutcomeFail, Duration: 2 * time.Millisecond, Message: "Expected values to be strictly equal:", Operator: "strictEqual"},
			{Seq: 3, Module: "b.test.cue", Path: []string{"<g>", "inner"}, Name: "three", Outcome: OutcomeSkip},
		},
	}
}
