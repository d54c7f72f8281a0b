// Package commands implements the CLI commands for affected.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/affected/internal/app"
	"go.trai.ch/affected/internal/build"
	"go.trai.ch/affected/internal/core/ports"
)

// Application represents the application logic interface.
type Application interface {
	Compute(ctx context.Context, opts app.ComputeOptions) (*app.Result, error)
	Run(ctx context.Context, opts app.RunOptions) (*app.Result, error)
	Watch(ctx context.Context, opts app.ComputeOptions, onResult func(*app.Result) error) error
	Graph(cwd string) ([]app.GraphNode, error)
}

// LogSettings is implemented by loggers that can be reconfigured from flags.
type LogSettings interface {
	SetJSON(enable bool)
	SetDebug(enable bool)
}

// CLI represents the command line interface for affected.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app and logger.
func New(a Application, log ports.Logger) *CLI {
	c := &CLI{
		app:    a,
		logger: log,
	}

	rootCmd := &cobra.Command{
		Use:           "affected",
		Short:         "Select the modules of a multi-module build that a change affects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.configureLogger(cmd)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("log-json", false, "Write log output as JSON")
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Directory to start the workspace search from")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newComputeCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newGraphCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configureLogger(cmd *cobra.Command) {
	settings, ok := c.logger.(LogSettings)
	if !ok {
		return
	}
	if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
		settings.SetJSON(true)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		settings.SetDebug(true)
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
