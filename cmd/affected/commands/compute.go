package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/affected/internal/adapters/detector"
)

func (c *CLI) newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print the modules affected by the current changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, closePatch, err := computeOptions(cmd)
			if err != nil {
				return err
			}
			defer closePatch()

			res, err := c.app.Compute(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return writeReport(cmd.OutOrStdout(), outputFormat(cmd), res)
		},
	}
	addSelectionFlags(cmd)
	addChangeInputFlags(cmd)
	addFormatFlags(cmd)
	return cmd
}

func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", "auto", "Output format: auto, pretty, plain or json")
	cmd.Flags().Bool("json", false, "Print JSON (shorthand for --format=json)")
}

func outputFormat(cmd *cobra.Command) detector.OutputFormat {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return detector.FormatJSON
	}
	format, _ := cmd.Flags().GetString("format")
	return detector.ResolveFormat(detector.DetectEnvironment(), format)
}
