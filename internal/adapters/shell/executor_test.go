package shell_test

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/affected/internal/adapters/shell"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newExecutor(t *testing.T) *shell.Executor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell tests require a POSIX shell")
	}
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return shell.NewExecutor(log)
}

func TestExecutor_RunsInWorkingDir(t *testing.T) {
	executor := newExecutor(t)
	dir := t.TempDir()

	task := &domain.Task{
		Name:        domain.NewInternedString("test"),
		Command:     []string{"sh", "-c", "pwd; echo \"$AFFECTED_MODULE $GREETING\""},
		Environment: map[string]string{"GREETING": "hello"},
		WorkingDir:  dir,
	}

	var out bytes.Buffer
	err := executor.Execute(t.Context(), task, []string{"AFFECTED_MODULE=api"}, &out, &out)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(out.String(), "\r", "")), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, []string{dir, resolved}, lines[0])
	assert.Equal(t, "api hello", lines[1])
}

func TestExecutor_Failure(t *testing.T) {
	executor := newExecutor(t)

	task := &domain.Task{
		Name:       domain.NewInternedString("test"),
		Command:    []string{"sh", "-c", "exit 3"},
		WorkingDir: t.TempDir(),
	}

	err := executor.Execute(t.Context(), task, nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")
}

func TestExecutor_EmptyCommand(t *testing.T) {
	executor := newExecutor(t)

	err := executor.Execute(t.Context(), &domain.Task{}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
}

func TestExecutor_MissingBinary(t *testing.T) {
	executor := newExecutor(t)

	task := &domain.Task{
		Command:    []string{"definitely-not-a-real-binary-affected"},
		WorkingDir: t.TempDir(),
	}

	err := executor.Execute(t.Context(), task, nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestResolveEnvironment(t *testing.T) {
	got := shell.ResolveEnvironmentExported(
		[]string{"PATH=/usr/bin", "HOME=/home/u", "MODE=sys", "malformed"},
		[]string{"MODE=invocation", "AFFECTED_MODULE=api"},
		map[string]string{"MODE": "task"},
	)

	assert.Equal(t, []string{
		"AFFECTED_MODULE=api",
		"HOME=/home/u",
		"MODE=task",
		"PATH=/usr/bin",
	}, got)
}
