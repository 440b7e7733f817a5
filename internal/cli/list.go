package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/entail/internal/suite"
)

// ListedUnit is one resolved unit in list output.
type ListedUnit struct {
	Module string   `json:"module"`
	Path   []string `json:"path"`
	Name   string   `json:"name"`
	Mode   string   `json:"mode"`
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Units []ListedUnit `json:"units"`
	Run   int          `json:"run"`
	Skip  int          `json:"skip"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [patterns...]",
		Short: "List units without running them",
		Long: `Discover suite files and resolve their units exactly as "test" would,
printing each unit with the mode it would run in. Nothing is executed.

Examples:
  entail list
  entail list "suites/**/*.cue" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, patterns []string, cmd *cobra.Command) error {
	modules, err := discover(opts.Config, patterns, opts.Logger)
	if err != nil {
		return err
	}

	result := ListResult{Units: []ListedUnit{}}
	for u := range suite.Resolve(modules) {
		lu := ListedUnit{Name: u.Name, Mode: string(u.Mode), Path: []string{}}
		if len(u.At) > 0 {
			lu.Module = u.At[0]
			lu.Path = u.At[1:]
		}
		if u.Mode == suite.ModeSkip {
			result.Skip++
		} else {
			result.Run++
		}
		result.Units = append(result.Units, lu)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd.OutOrStdout()).Success(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Units) == 0 {
		fmt.Fprintln(w, "No units found.")
		return nil
	}

	rows := make([][]string, 0, len(result.Units))
	for _, u := range result.Units {
		rows = append(rows, []string{u.Mode, u.Module, strings.Join(u.Path, " ⏵ "), u.Name})
	}
	renderTable(w, []string{"Mode", "Module", "Group", "Unit"}, rows)
	fmt.Fprintf(w, "%d to run, %d skipped\n", result.Run, result.Skip)
	return nil
}
