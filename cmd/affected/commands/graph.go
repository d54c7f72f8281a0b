package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/affected/internal/app"
)

func (c *CLI) newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the module dependency graph, dependencies first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			nodes, err := c.app.Graph(dir)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(nodes)
			}
			return writeGraph(cmd.OutOrStdout(), nodes)
		},
	}
	cmd.Flags().Bool("json", false, "Print the graph as JSON")
	return cmd
}

func writeGraph(w io.Writer, nodes []app.GraphNode) error {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s (%s)\n", n.ID, displayDir(n.Dir))
		fmt.Fprintf(&b, "  depends on: %s\n", list(n.Dependencies))
		fmt.Fprintf(&b, "  dependents: %s\n", list(n.Dependents))
		fmt.Fprintf(&b, "  tasks:      %s\n", list(n.Tasks))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
