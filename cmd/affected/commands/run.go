package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/affected/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Run the target task of every affected module",
		Long: "Run the target task of every affected module in dependency order.\n" +
			"Arguments after -- are appended to every task command and replace AFFECTED_ARGS.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, closePatch, err := computeOptions(cmd)
			if err != nil {
				return err
			}
			defer closePatch()

			parallel, _ := cmd.Flags().GetInt("parallel")

			_, err = c.app.Run(cmd.Context(), app.RunOptions{
				ComputeOptions: opts,
				Parallelism:    parallel,
				Args:           args,
			})
			return err
		},
	}
	addSelectionFlags(cmd)
	addChangeInputFlags(cmd)
	cmd.Flags().IntP("parallel", "j", 0, "Maximum number of tasks running at once (0 uses the CPU count)")
	return cmd
}
