package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/entail/internal/config"
	"github.com/roach88/entail/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	LogLevel   string
	ConfigPath string
	Cwd        string

	// Set before any subcommand runs.
	Config *config.Config
	Logger *logrus.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the entail CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entail",
		Short: "entail - convention-driven test harness",
		Long: `Discover suite files, run their units in order, and report progress
with structural diffs for failed assertions.

Exports named "test ..." are units; "skip test ..." and "only test ..."
change their mode, and so do "skip " and "only " prefixes inside groups.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.FileName+" in the working directory)")
	cmd.PersistentFlags().StringVarP(&opts.Cwd, "cwd", "C", "", "the directory to resolve suites from")

	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// setup loads the configuration and builds the logger. Flags win over the
// config file and environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	dir := o.Cwd
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return commandError(ErrCodeConfig, "failed to resolve working directory", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return commandError(ErrCodeConfig, "failed to resolve working directory", err)
	}

	cfg, err := config.Load(dir, o.ConfigPath)
	if err != nil {
		return commandError(ErrCodeConfig, "failed to load configuration", err)
	}
	if o.Cwd != "" {
		cfg.Cwd = dir
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = o.LogLevel
	}
	if o.Verbose {
		level = logrus.DebugLevel.String()
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return commandError(ErrCodeConfig, "invalid log level", err)
	}

	o.Config = cfg
	o.Logger = logger
	logger.WithFields(logrus.Fields{
		"cwd":    cfg.Cwd,
		"format": o.Format,
	}).Debug("configuration loaded")
	return nil
}

func (o *RootOptions) formatter(w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: w, Verbose: o.Verbose}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the CLI and returns the process exit code. Unit failures are
// reported by the command itself; any other error is written here, as a
// JSON envelope on stdout or as text on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	code := ExitCommandError
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}
	if code == ExitFailure {
		return code
	}

	if opts.Format == "json" {
		_ = opts.formatter(stdout).Error(errorCode(err), err.Error(), nil)
	} else {
		_ = opts.formatter(stderr).Error(errorCode(err), err.Error(), nil)
	}
	return code
}
