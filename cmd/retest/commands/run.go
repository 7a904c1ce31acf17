package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/retest/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <root-dir>",
		Short: "Discover and run the regression tasks under a root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, _ := cmd.Flags().GetString("work-dir")
			extensions, _ := cmd.Flags().GetStringSlice("extensions")
			exePath, _ := cmd.Flags().GetString("exe-path")
			childArgs, _ := cmd.Flags().GetStringArray("args")
			permits, _ := cmd.Flags().GetInt64("permits")
			include, _ := cmd.Flags().GetStringSlice("include")
			exclude, _ := cmd.Flags().GetStringSlice("exclude")
			debug, _ := cmd.Flags().GetBool("debug")
			printErrs, _ := cmd.Flags().GetBool("print-errs")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Run(cmd.Context(), app.RunOptions{
				RootDir:    args[0],
				WorkDir:    workDir,
				Extensions: extensions,
				ExePath:    exePath,
				Args:       childArgs,
				Permits:    permits,
				Include:    include,
				Exclude:    exclude,
				Debug:      debug,
				PrintErrs:  printErrs,
				Watch:      watch,
			})
		},
	}

	cmd.Flags().String("work-dir", "./tmp", "Work directory root for task sandboxes")
	cmd.Flags().StringSlice("extensions", nil, "Task file extensions (overrides the root __all__.toml)")
	cmd.Flags().String("exe-path", "", "Default program to launch for each task")
	cmd.Flags().StringArray("args", nil, "Default command-line arguments")
	cmd.Flags().Int64("permits", 1, "Total permits bounding parallelism")
	cmd.Flags().StringSlice("include", nil, "Only run tasks matching these globs")
	cmd.Flags().StringSlice("exclude", nil, "Skip tasks matching these globs")
	cmd.Flags().Bool("debug", false, "Emit resolved configs and keep work directories")
	cmd.Flags().Bool("print-errs", false, "Forward captured output of failing tasks to stderr")
	cmd.Flags().BoolP("watch", "w", false, "Re-run whenever the task tree changes")

	return cmd
}
