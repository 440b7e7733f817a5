package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/entail"
	"github.com/roach88/entail/internal/config"
	"github.com/roach88/entail/internal/report"
	"github.com/roach88/entail/internal/runner"
	"github.com/roach88/entail/internal/store"
	"github.com/roach88/entail/internal/style"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Bail       bool
	Color      bool
	Extensions string
	Record     string

	// Clock and IDs allow overriding time and run ids (for testing).
	Clock runner.Clock
	IDs   store.IDGenerator
}

// TestResult is the JSON payload of the test command.
type TestResult struct {
	report.Summary
	Files int `json:"files"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [patterns...]",
		Short: "Run suites",
		Long: `Discover suite files matching the patterns, run their units in order,
and print progress followed by failure diagnostics and totals.

Patterns use doublestar syntax relative to the working directory. Without
patterns the configured ones are used (default "` + config.DefaultPatterns[0] + `").

Exit codes:
  0 - All units passed
  1 - One or more units failed
  2 - Command error (bad config, unreadable suite, etc.)

Examples:
  entail test
  entail test "suites/**/*.yaml" --bail
  entail test -C ./examples --record runs.db
  entail test --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Bail, "bail", "b", false, "exit on first failure")
	cmd.Flags().BoolVarP(&opts.Color, "color", "c", true, "print colorized output")
	cmd.Flags().StringVar(&opts.Extensions, "extensions", "", "suite file extensions (default yaml,yml,json,cue)")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the run in this SQLite database")

	return cmd
}

// apply lays explicitly set flags over the loaded configuration.
func (o *TestOptions) apply(cmd *cobra.Command) *config.Config {
	cfg := *o.Config
	flags := cmd.Flags()
	if flags.Changed("bail") {
		cfg.Bail = o.Bail
	}
	if flags.Changed("color") {
		color := o.Color
		cfg.Color = &color
	}
	if flags.Changed("extensions") {
		cfg.Extensions = config.SplitList(o.Extensions)
	}
	if flags.Changed("record") {
		cfg.Record = o.Record
	}
	return &cfg
}

func runTests(opts *TestOptions, patterns []string, cmd *cobra.Command) error {
	cfg := opts.apply(cmd)
	log := opts.Logger

	modules, err := discover(cfg, patterns, log)
	if err != nil {
		return err
	}

	f := opts.formatter(cmd.OutOrStdout())
	if len(modules) == 0 {
		if opts.Format == "json" {
			return f.Success(TestResult{})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No suite files found.")
		return nil
	}

	// JSON mode keeps stdout for the envelope.
	var progress io.Writer = cmd.OutOrStdout()
	palette := style.Plain()
	if opts.Format == "json" {
		progress = io.Discard
	} else if cfg.Color == nil {
		palette = style.Detect(progress)
	} else {
		palette = style.New(*cfg.Color)
	}

	clock := opts.Clock
	if clock == nil {
		clock = wallClock{}
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	startedAt := clock.Now()
	rep, err := entail.Test(ctx, progress, modules,
		entail.WithBail(cfg.Bail),
		entail.WithPalette(palette),
		entail.WithLogger(log),
		entail.WithClock(clock),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "run did not complete", err)
	}
	log.WithFields(logrus.Fields{
		"passed":  len(rep.Passed),
		"failed":  len(rep.Failed),
		"skipped": len(rep.Skipped),
	}).Info("run finished")

	var runID string
	if cfg.Record != "" {
		runID, err = record(ctx, opts, cfg, startedAt, rep)
		if err != nil {
			return err
		}
	}

	if opts.Format == "json" {
		resp := CLIResponse{
			Status: "ok",
			Data:   TestResult{Summary: rep.Summary(), Files: len(modules)},
			RunID:  runID,
		}
		if !rep.OK() {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeTestsFailed,
				Message: fmt.Sprintf("%d unit(s) failed", len(rep.Failed)),
			}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	}

	if !rep.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d unit(s) failed", len(rep.Failed)))
	}
	return nil
}

func record(ctx context.Context, opts *TestOptions, cfg *config.Config, startedAt time.Time, rep *report.Report) (string, error) {
	var storeOpts []store.Option
	if opts.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
	}

	st, err := store.Open(cfg.Record, storeOpts...)
	if err != nil {
		return "", commandError(ErrCodeStore, "failed to open run database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger.WithError(closeErr).Error("error closing database")
		}
	}()

	id, err := st.WriteRun(ctx, store.FromReport("", startedAt, cfg.Bail, rep))
	if err != nil {
		return "", commandError(ErrCodeStore, "failed to record run", err)
	}
	opts.Logger.WithFields(logrus.Fields{"run_id": id, "db": cfg.Record}).Info("run recorded")
	return id, nil
}

// signalContext cancels on interrupt so a long run stops at the next unit.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }
