package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, bail, total, passed, failed, skipped, duration_ns
		FROM runs
		ORDER BY started_at DESC, id ASC COLLATE BINARY
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run with its unit results.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, bail, total, passed, failed, skipped, duration_ns
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	run.Results, err = s.UnitResults(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// UnitResults returns the unit results of a run in stream order.
func (s *Store) UnitResults(ctx context.Context, runID string) ([]UnitResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, module, path, name, outcome, duration_ns, message, operator
		FROM unit_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("unit results: %w", err)
	}
	defer rows.Close()

	var out []UnitResult
	for rows.Next() {
		var (
			r        UnitResult
			path     string
			duration int64
		)
		if err := rows.Scan(&r.Seq, &r.Module, &path, &r.Name, &r.Outcome, &duration, &r.Message, &r.Operator); err != nil {
			return nil, fmt.Errorf("unit results: %w", err)
		}
		if r.Path, err = unmarshalPath(path); err != nil {
			return nil, fmt.Errorf("unit results: %w", err)
		}
		r.Duration = time.Duration(duration)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unit results: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		startedAt int64
		duration  int64
	)
	err := row.Scan(&run.ID, &startedAt, &run.Bail, &run.Total, &run.Passed, &run.Failed, &run.Skipped, &duration)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(duration)
	return run, nil
}
