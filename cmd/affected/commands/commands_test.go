package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/affected/cmd/affected/commands"
	"go.trai.ch/affected/internal/app"
	"go.trai.ch/affected/internal/build"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type mockApp struct {
	computeFunc func(ctx context.Context, opts app.ComputeOptions) (*app.Result, error)
	runFunc     func(ctx context.Context, opts app.RunOptions) (*app.Result, error)
	watchFunc   func(ctx context.Context, opts app.ComputeOptions, onResult func(*app.Result) error) error
	graphFunc   func(cwd string) ([]app.GraphNode, error)
}

func (m *mockApp) Compute(ctx context.Context, opts app.ComputeOptions) (*app.Result, error) {
	if m.computeFunc != nil {
		return m.computeFunc(ctx, opts)
	}
	return sampleResult(false), nil
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) (*app.Result, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return sampleResult(false), nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.ComputeOptions, onResult func(*app.Result) error) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts, onResult)
	}
	return nil
}

func (m *mockApp) Graph(cwd string) ([]app.GraphNode, error) {
	if m.graphFunc != nil {
		return m.graphFunc(cwd)
	}
	return nil, nil
}

type settingsLogger struct {
	*mocks.MockLogger
	json  bool
	debug bool
}

func (l *settingsLogger) SetJSON(enable bool)  { l.json = enable }
func (l *settingsLogger) SetDebug(enable bool) { l.debug = enable }

func newLogger(t *testing.T) *settingsLogger {
	t.Helper()
	return &settingsLogger{MockLogger: mocks.NewMockLogger(gomock.NewController(t))}
}

// sampleResult is core <- api <- web with a change in api.
func sampleResult(debug bool) *app.Result {
	ids := domain.NewInternedStrings([]string{"api", "core", "web"})
	reasons := map[domain.InternedString]domain.Reason{
		ids[0]: domain.ReasonDirect,
		ids[1]: domain.ReasonUnaffected,
		ids[2]: domain.ReasonDependent,
	}
	snapshot := domain.DebugSnapshot{
		Direct:    []string{"api"},
		Dependent: []string{"web"},
		AlwaysRun: []string{},
		NeverRun:  []string{},
		Allow:     []string{},
	}
	notices := []domain.Notice{{
		Kind:    domain.NoticeUnownedFile,
		Message: `changed file "README.md" is not owned by any module`,
		Path:    "README.md",
	}}
	return &app.Result{
		Config:    domain.Config{TargetTask: "test", Mode: domain.ModeIncludeDependents, Debug: debug},
		Changes:   domain.NewChangeSet("services/api/main.go", "README.md"),
		Source:    app.SourceGit,
		Base:      "0123456789abcdef0123456789abcdef01234567",
		Decisions: domain.NewDecisionSet(ids, reasons, snapshot, notices),
	}
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cli := commands.New(a, newLogger(t))
	cli.SetArgs(args)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))

	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCompute_Formats(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		golden string
		debug  bool
	}{
		{name: "plain", args: []string{"--format", "plain"}, golden: "compute_plain"},
		{name: "pretty", args: []string{"--format", "pretty"}, golden: "compute_pretty"},
		{name: "json flag", args: []string{"--json"}, golden: "compute_json"},
		{name: "json with debug", args: []string{"--format", "json"}, golden: "compute_json_debug", debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockApp{
				computeFunc: func(context.Context, app.ComputeOptions) (*app.Result, error) {
					return sampleResult(tt.debug), nil
				},
			}

			out, err := execute(t, a, append([]string{"compute"}, tt.args...)...)
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, tt.golden, []byte(out))
		})
	}
}

func TestCompute_WiresFlags(t *testing.T) {
	var captured app.ComputeOptions
	a := &mockApp{
		computeFunc: func(_ context.Context, opts app.ComputeOptions) (*app.Result, error) {
			captured = opts
			return sampleResult(false), nil
		},
	}

	_, err := execute(t, a,
		"compute", "-C", "/work",
		"--target", "lint",
		"--mode", "ONLY_DIRECT",
		"--projects", "api,web", "-p", "core",
		"--all",
		"--base", "main",
		"--head", "feature",
		"--compare", "branch",
		"--files", "a.go,b.go",
		"--format", "plain",
	)
	require.NoError(t, err)

	assert.Equal(t, "/work", captured.Cwd)
	assert.Equal(t, []string{"a.go", "b.go"}, captured.Files)
	assert.Nil(t, captured.Patch)

	ov := captured.Overrides
	assert.Equal(t, "lint", ov.Target)
	assert.Equal(t, "ONLY_DIRECT", ov.Mode)
	assert.Equal(t, []string{"api", "web", "core"}, ov.Projects)
	assert.True(t, ov.All)
	assert.Equal(t, "main", ov.Base)
	assert.Equal(t, "feature", ov.Head)
	assert.Equal(t, "branch", ov.Compare)
}

func TestCompute_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AFFECTED_TARGET", "build")
	t.Setenv("AFFECTED_PROJECTS", "api, web")
	t.Setenv("AFFECTED_BASE", "origin/main")

	var captured app.ComputeOptions
	a := &mockApp{
		computeFunc: func(_ context.Context, opts app.ComputeOptions) (*app.Result, error) {
			captured = opts
			return sampleResult(false), nil
		},
	}

	_, err := execute(t, a, "compute", "--target", "lint", "--format", "plain")
	require.NoError(t, err)

	assert.Equal(t, "lint", captured.Overrides.Target)
	assert.Equal(t, []string{"api", "web"}, captured.Overrides.Projects)
	assert.Equal(t, "origin/main", captured.Overrides.Base)
}

func TestCompute_Patch(t *testing.T) {
	patchPath := filepath.Join(t.TempDir(), "change.patch")
	require.NoError(t, os.WriteFile(patchPath, []byte("--- a/x\n+++ b/x\n"), 0o600))

	var content string
	a := &mockApp{
		computeFunc: func(_ context.Context, opts app.ComputeOptions) (*app.Result, error) {
			require.NotNil(t, opts.Patch)
			buf := new(bytes.Buffer)
			_, err := buf.ReadFrom(opts.Patch)
			require.NoError(t, err)
			content = buf.String()
			return sampleResult(false), nil
		},
	}

	_, err := execute(t, a, "compute", "--patch", patchPath, "--format", "plain")
	require.NoError(t, err)
	assert.Equal(t, "--- a/x\n+++ b/x\n", content)

	_, err = execute(t, a, "compute", "--patch", filepath.Join(t.TempDir(), "missing.patch"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open patch")
}

func TestCompute_Error(t *testing.T) {
	a := &mockApp{
		computeFunc: func(context.Context, app.ComputeOptions) (*app.Result, error) {
			return nil, errors.New("simulated error")
		},
	}

	_, err := execute(t, a, "compute")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

func TestRun_WiresFlags(t *testing.T) {
	var captured app.RunOptions
	a := &mockApp{
		runFunc: func(_ context.Context, opts app.RunOptions) (*app.Result, error) {
			captured = opts
			return sampleResult(false), nil
		},
	}

	_, err := execute(t, a, "run", "-j", "3", "--compare", "working", "--target", "build")
	require.NoError(t, err)

	assert.Equal(t, 3, captured.Parallelism)
	assert.Equal(t, "working", captured.Overrides.Compare)
	assert.Equal(t, "build", captured.Overrides.Target)
	assert.Empty(t, captured.Args)
}

func TestRun_PassesTrailingArgs(t *testing.T) {
	var captured app.RunOptions
	a := &mockApp{
		runFunc: func(_ context.Context, opts app.RunOptions) (*app.Result, error) {
			captured = opts
			return sampleResult(false), nil
		},
	}

	_, err := execute(t, a, "run", "-j", "2", "--", "--info", "-x", "lint")
	require.NoError(t, err)

	assert.Equal(t, 2, captured.Parallelism)
	assert.Equal(t, []string{"--info", "-x", "lint"}, captured.Args)
}

func TestRun_PropagatesRunFailure(t *testing.T) {
	a := &mockApp{
		runFunc: func(context.Context, app.RunOptions) (*app.Result, error) {
			return nil, errors.Join(domain.ErrRunFailed, errors.New("core failed"))
		},
	}

	_, err := execute(t, a, "run")
	require.ErrorIs(t, err, domain.ErrRunFailed)
}

func TestWatch_PrintsEachBatch(t *testing.T) {
	a := &mockApp{
		watchFunc: func(_ context.Context, _ app.ComputeOptions, onResult func(*app.Result) error) error {
			for range 2 {
				if err := onResult(sampleResult(false)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	out, err := execute(t, a, "watch", "--format", "plain")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "watch_plain", []byte(out))
}

func TestGraph(t *testing.T) {
	nodes := []app.GraphNode{
		{ID: "core", Dir: "libs/core", Dependencies: []string{}, Dependents: []string{"api"}, Tasks: []string{"build", "test"}},
		{ID: "api", Dir: "services/api", Dependencies: []string{"core"}, Dependents: []string{"web"}, Tasks: []string{"test"}},
		{ID: "web", Dir: "", Dependencies: []string{"api"}, Dependents: []string{}},
	}
	a := &mockApp{
		graphFunc: func(cwd string) ([]app.GraphNode, error) {
			assert.Equal(t, ".", cwd)
			return nodes, nil
		},
	}

	out, err := execute(t, a, "graph")
	require.NoError(t, err)
	goldie.New(t).Assert(t, "graph_text", []byte(out))

	out, err = execute(t, a, "graph", "--json")
	require.NoError(t, err)
	goldie.New(t).Assert(t, "graph_json", []byte(out))
}

func TestGraph_Error(t *testing.T) {
	a := &mockApp{
		graphFunc: func(string) ([]app.GraphNode, error) {
			return nil, domain.ErrCycleDetected
		},
	}

	_, err := execute(t, a, "graph")
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestLoggerFlags(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	log := newLogger(t)

	cli := commands.New(&mockApp{}, log)
	cli.SetArgs([]string{"compute", "--log-json", "--debug", "--format", "plain"})
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, log.json)
	assert.True(t, log.debug)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "affected version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "affected version "+build.Version)
}
