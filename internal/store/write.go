package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its unit results in one transaction and
// returns the run id. A run without an id gets one from the generator.
func (s *Store) WriteRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = s.newID.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, bail, total, passed, failed, skipped, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UnixNano(),
		run.Bail,
		run.Total,
		run.Passed,
		run.Failed,
		run.Skipped,
		int64(run.Duration),
	)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO unit_results
		(run_id, seq, module, path, name, outcome, duration_ns, message, operator)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("write run: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Results {
		path, err := marshalPath(r.Path)
		if err != nil {
			return "", fmt.Errorf("write run: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			run.ID,
			r.Seq,
			r.Module,
			path,
			r.Name,
			r.Outcome,
			int64(r.Duration),
			r.Message,
			r.Operator,
		)
		if err != nil {
			return "", fmt.Errorf("write unit result %d: %w", r.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}
	return run.ID, nil
}
