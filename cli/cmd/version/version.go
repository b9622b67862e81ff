package version

import (
	"context"

	"github.com/salesdesk/salesdesk/cli/cmd"
	"github.com/salesdesk/salesdesk/engine/export"
	"github.com/salesdesk/salesdesk/pkg/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand prints the build information.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: func(_ context.Context, _ *cobra.Command, e *cmd.CommandExecutor, _ []string) error {
					info := version.Get()
					return e.Write(info, export.Table{
						Headers: []string{"Version", "Commit", "Built"},
						Rows:    [][]string{{info.Version, info.CommitHash, info.BuildDate}},
					})
				},
			}, args)
		},
	}
}
