// Package shell runs module task commands in a pseudo-terminal.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the task's command in its working directory and waits for it.
// Output goes to stdout through a pty so tools keep their colors; where a pty
// is unavailable stdout and stderr are wired directly. An empty command is a
// successful no-op.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, env []string, stdout, stderr io.Writer) error {
	if len(task.Command) == 0 {
		return nil
	}

	cmd := buildCommand(ctx, task, env)
	e.logger.Debug("running " + strings.Join(task.Command, " ") + " in " + cmd.Dir)

	ptmx, err := pty.Start(cmd)
	switch {
	case errors.Is(err, pty.ErrUnsupported):
		cmd = buildCommand(ctx, task, env)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		err = cmd.Run()
	case err != nil:
		return zerr.With(zerr.Wrap(err, "failed to start pty"), "command", task.Command[0])
	default:
		err = waitPty(cmd, ptmx, stdout)
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}
	return nil
}

// waitPty copies the pty output to w until the command exits and the pty drains.
func waitPty(cmd *exec.Cmd, ptmx *os.File, w io.Writer) error {
	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the pty after the child exits ends with EIO, which is expected.
		_, _ = io.Copy(w, ptmx)
	}()

	err := cmd.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

func buildCommand(ctx context.Context, task *domain.Task, env []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, task.Command[0], task.Command[1:]...) //nolint:gosec // module task command
	cmd.Dir = task.WorkingDir
	cmd.Env = resolveEnvironment(os.Environ(), env, task.Environment)
	return cmd
}

// resolveEnvironment layers the invocation environment over the process
// environment and the task's declared environment over both. The result is
// sorted for deterministic child environments.
func resolveEnvironment(sysEnv, env []string, taskEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(env)+len(taskEnv))
	for _, layer := range [][]string{sysEnv, env} {
		for _, entry := range layer {
			if k, v, ok := strings.Cut(entry, "="); ok {
				envMap[k] = v
			}
		}
	}
	for k, v := range taskEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
