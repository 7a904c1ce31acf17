package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the work directory root and all task sandboxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, _ := cmd.Flags().GetString("work-dir")
			return c.app.Clean(cmd.Context(), workDir)
		},
	}

	cmd.Flags().String("work-dir", "./tmp", "Work directory root to remove")

	return cmd
}
