package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/affected/internal/adapters/config"
	"go.trai.ch/affected/internal/app"
	"go.trai.ch/zerr"
)

// addSelectionFlags registers the flags that select the configuration and the
// changes a computation works on.
func addSelectionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP(config.KeyTarget, "t", "", "Task to run for affected modules (overrides the workfile target)")
	flags.StringP(config.KeyMode, "m", "", "ONLY_DIRECT or INCLUDE_DEPENDENTS (overrides the workfile mode)")
	flags.StringSliceP(config.KeyProjects, "p", nil, "Restrict the result to these module ids")
	flags.BoolP(config.KeyAll, "a", false, "Treat every module as changed")
	flags.Bool(config.KeyDebug, false, "Print the configuration and intermediate sets")
	flags.String(config.KeyBase, "", "Revision to compare against (defaults to the last successful run)")
	flags.String(config.KeyHead, "", "Revision being built (defaults to HEAD)")
	flags.String(config.KeyCompare, "", "Comparison: commit, working, staged or branch")
}

// addChangeInputFlags registers the flags that supply changed files directly.
func addChangeInputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSlice("files", nil, "Changed files relative to the workspace root instead of asking git")
	flags.String("patch", "", "Unified diff whose files are the changed files (- reads stdin)")
}

// overrides reads the selection flags, falling back to AFFECTED_* variables.
func overrides(cmd *cobra.Command) (config.Overrides, error) {
	v := config.NewViper()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return config.Overrides{}, err
	}
	return config.ReadOverrides(v), nil
}

// computeOptions assembles the options shared by compute and run. The
// returned closer releases an opened patch file.
func computeOptions(cmd *cobra.Command) (app.ComputeOptions, func(), error) {
	noop := func() {}

	ov, err := overrides(cmd)
	if err != nil {
		return app.ComputeOptions{}, noop, err
	}

	dir, _ := cmd.Flags().GetString("dir")
	opts := app.ComputeOptions{Cwd: dir, Overrides: ov}

	if cmd.Flags().Lookup("files") == nil {
		return opts, noop, nil
	}

	opts.Files, _ = cmd.Flags().GetStringSlice("files")

	patchPath, _ := cmd.Flags().GetString("patch")
	switch patchPath {
	case "":
		return opts, noop, nil
	case "-":
		opts.Patch = cmd.InOrStdin()
		return opts, noop, nil
	}

	f, err := os.Open(patchPath)
	if err != nil {
		return app.ComputeOptions{}, noop, zerr.With(zerr.Wrap(err, "failed to open patch"), "path", patchPath)
	}
	opts.Patch = f
	return opts, func() { _ = f.Close() }, nil
}
