package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/entail/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Run      string
}

// RecordedRun is one run in history output.
type RecordedRun struct {
	ID         string             `json:"id"`
	StartedAt  time.Time          `json:"started_at"`
	Bail       bool               `json:"bail"`
	Total      int                `json:"total"`
	Passed     int                `json:"passed"`
	Failed     int                `json:"failed"`
	Skipped    int                `json:"skipped"`
	DurationMS float64            `json:"duration_ms"`
	Results    []store.UnitResult `json:"results,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show runs recorded with "entail test --record", newest first.
With --run, show the unit results of one run.

Examples:
  entail history --db runs.db
  entail history --db runs.db --limit 5 --format json
  entail history --db runs.db --run 0190c9d2-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: configured record path)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of runs to show (0 for all)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the unit results of this run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	db := opts.Database
	if db == "" {
		db = opts.Config.Record
	}
	if db == "" {
		return commandError(ErrCodeStore, "no database: pass --db or set record", nil)
	}

	st, err := store.Open(db)
	if err != nil {
		return commandError(ErrCodeStore, "failed to open run database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger.WithError(closeErr).Error("error closing database")
		}
	}()

	ctx := cmd.Context()
	if opts.Run != "" {
		run, err := st.ReadRun(ctx, opts.Run)
		if err != nil {
			return commandError(ErrCodeStore, "failed to read run", err)
		}
		return outputRun(opts, cmd, run)
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return commandError(ErrCodeStore, "failed to list runs", err)
	}
	return outputRuns(opts, cmd, runs)
}

func recorded(run store.Run) RecordedRun {
	return RecordedRun{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		Bail:       run.Bail,
		Total:      run.Total,
		Passed:     run.Passed,
		Failed:     run.Failed,
		Skipped:    run.Skipped,
		DurationMS: float64(run.Duration) / float64(time.Millisecond),
		Results:    run.Results,
	}
}

func outputRuns(opts *HistoryOptions, cmd *cobra.Command, runs []store.Run) error {
	out := make([]RecordedRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, recorded(run))
	}
	if opts.Format == "json" {
		return opts.formatter(cmd.OutOrStdout()).Success(out)
	}

	w := cmd.OutOrStdout()
	if len(out) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	rows := make([][]string, 0, len(out))
	for _, r := range out {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Format(time.RFC3339),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Passed),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
			fmt.Sprintf("%.2fms", r.DurationMS),
		})
	}
	renderTable(w, []string{"Run", "Started", "Total", "Passed", "Failed", "Skipped", "Duration"}, rows)
	return nil
}

func outputRun(opts *HistoryOptions, cmd *cobra.Command, run store.Run) error {
	if opts.Format == "json" {
		return opts.formatter(cmd.OutOrStdout()).Success(recorded(run))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.StartedAt.Format(time.RFC3339))

	rows := make([][]string, 0, len(run.Results))
	for _, r := range run.Results {
		name := r.Name
		for i := len(r.Path) - 1; i >= 0; i-- {
			name = r.Path[i] + " ⏵ " + name
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Seq),
			r.Outcome,
			r.Module,
			name,
			fmt.Sprintf("%.2fms", float64(r.Duration)/float64(time.Millisecond)),
			r.Message,
		})
	}
	renderTable(w, []string{"#", "Outcome", "Module", "Unit", "Duration", "Message"}, rows)
	return nil
}
