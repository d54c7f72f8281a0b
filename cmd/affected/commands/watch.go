package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/affected/internal/adapters/detector"
	"go.trai.ch/affected/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the affected modules whenever files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, _, err := computeOptions(cmd)
			if err != nil {
				return err
			}

			format := outputFormat(cmd)
			w := cmd.OutOrStdout()

			return c.app.Watch(cmd.Context(), opts, func(res *app.Result) error {
				if format != detector.FormatJSON {
					if _, err := fmt.Fprintf(w, "changed: %s\n", strings.Join(res.Changes.Files(), ", ")); err != nil {
						return err
					}
				}
				return writeReport(w, format, res)
			})
		},
	}
	addSelectionFlags(cmd)
	addFormatFlags(cmd)
	return cmd
}
