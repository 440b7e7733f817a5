package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Print the configuration after defaults, the config file, .env and
ENTAIL_* environment variables have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Format == "json" {
				return rootOpts.formatter(cmd.OutOrStdout()).Success(rootOpts.Config)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rootOpts.Config.String())
			return nil
		},
	}
}
