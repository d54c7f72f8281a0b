package affected_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/affected/internal/adapters/telemetry"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/affected/internal/core/ports/mocks"
	"go.trai.ch/affected/internal/engine/affected"
	"go.uber.org/mock/gomock"
)

func ids(names ...string) []domain.InternedString {
	return domain.NewInternedStrings(names)
}

func mod(id, dir string, deps ...string) domain.Module {
	return domain.Module{ID: domain.NewInternedString(id), Dir: dir, Dependencies: ids(deps...)}
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func newEngine(t *testing.T) *affected.Engine {
	t.Helper()
	return affected.NewEngine(quietLogger(t), telemetry.NewNoOpTracer())
}

// twoModules is A(moduleA) and B(moduleB) where B depends on A.
func twoModules(t *testing.T) *domain.Registry {
	t.Helper()
	reg, err := domain.NewRegistry(mod("A", "moduleA"), mod("B", "moduleB", "A"))
	require.NoError(t, err)
	return reg
}

func compute(t *testing.T, reg *domain.Registry, changes domain.ChangeSet, cfg domain.Config) *domain.DecisionSet {
	t.Helper()
	d, err := newEngine(t).Compute(context.Background(), reg, changes, cfg)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

func TestCompute_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		changes domain.ChangeSet
		cfg     domain.Config
		want    []string
	}{
		{
			name:    "dependents are included by default",
			changes: domain.NewChangeSet("moduleA/src/File.x"),
			cfg:     domain.Config{TargetTask: "test", Mode: domain.ModeIncludeDependents},
			want:    []string{"A", "B"},
		},
		{
			name:    "only direct",
			changes: domain.NewChangeSet("moduleA/src/File.x"),
			cfg:     domain.Config{TargetTask: "test", Mode: domain.ModeOnlyDirect},
			want:    []string{"A"},
		},
		{
			name:    "affects-all pattern marks everything",
			changes: domain.NewChangeSet("build.config"),
			cfg:     domain.Config{TargetTask: "test", AffectsAllPatterns: []string{`^build\.config$`}},
			want:    []string{"A", "B"},
		},
		{
			name:    "never run dominates always run",
			changes: domain.NewChangeSet(),
			cfg:     domain.Config{TargetTask: "test", NeverRun: ids("B"), AlwaysRun: ids("B")},
			want:    nil,
		},
		{
			name:    "allow list restricts the affected set",
			changes: domain.NewChangeSet("moduleA/src/File.x"),
			cfg:     domain.Config{TargetTask: "test", AllowList: ids("A")},
			want:    []string{"A"},
		},
		{
			name:    "dependent only change does not touch its dependency",
			changes: domain.NewChangeSet("moduleB/main.x"),
			cfg:     domain.Config{TargetTask: "test"},
			want:    []string{"B"},
		},
		{
			name:    "all changed sentinel",
			changes: domain.AllChanged(),
			cfg:     domain.Config{TargetTask: "test", Mode: domain.ModeOnlyDirect},
			want:    []string{"A", "B"},
		},
		{
			name:    "no changes and no overrides",
			changes: domain.NewChangeSet(),
			cfg:     domain.Config{TargetTask: "test"},
			want:    nil,
		},
		{
			name:    "always run without changes",
			changes: domain.NewChangeSet(),
			cfg:     domain.Config{TargetTask: "test", AlwaysRun: ids("B")},
			want:    []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := compute(t, twoModules(t), tt.changes, tt.cfg)
			got := domain.Strings(d.Affected())
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompute_GlobalDominance(t *testing.T) {
	t.Parallel()

	reg, err := domain.NewRegistry(
		mod("a", "a"), mod("b", "b", "a"), mod("c", "c"), mod("d", "d"), mod("e", "e"),
	)
	require.NoError(t, err)

	cfg := domain.Config{
		TargetTask:         "check",
		AffectsAllPatterns: []string{`^ci/`},
		// The ignore pattern also matches the global file; affects-all must still win.
		IgnoredPatterns: []string{`\.yaml$`},
		NeverRun:        ids("c"),
		AllowList:       ids("a", "b", "c", "d"),
		Mode:            domain.ModeOnlyDirect,
	}

	d := compute(t, reg, domain.NewChangeSet("docs/readme.md", "ci/pipeline.yaml"), cfg)

	assert.Equal(t, []string{"a", "b", "d"}, domain.Strings(d.Affected()))
	r, _ := d.Reason(domain.NewInternedString("c"))
	assert.Equal(t, domain.ReasonNeverRun, r)
	r, _ = d.Reason(domain.NewInternedString("e"))
	assert.Equal(t, domain.ReasonNotAllowed, r)

	snap := d.Debug()
	assert.True(t, snap.Global)
	assert.Empty(t, snap.Direct, "global shortcut skips ownership mapping")
	assert.Empty(t, snap.Dependent)
}

func TestCompute_IgnoredFilesContributeNothing(t *testing.T) {
	t.Parallel()

	cfg := domain.Config{TargetTask: "test", IgnoredPatterns: []string{`\.md$`}}
	d := compute(t, twoModules(t), domain.NewChangeSet("moduleA/README.md"), cfg)

	assert.Empty(t, d.Affected())
	assert.Empty(t, d.Debug().Direct)
	assert.Empty(t, d.Notices(), "ignored files are not reported as unowned")
}

func TestCompute_TransitiveDependents(t *testing.T) {
	t.Parallel()

	reg, err := domain.NewRegistry(
		mod("core", "libs/core"),
		mod("auth", "libs/auth", "core"),
		mod("api", "services/api", "auth"),
		mod("web", "apps/web", "api"),
		mod("docs", "docs"),
	)
	require.NoError(t, err)

	d := compute(t, reg, domain.NewChangeSet("libs/core/x.go"), domain.Config{TargetTask: "build"})
	assert.Equal(t, []string{"api", "auth", "core", "web"}, domain.Strings(d.Affected()))

	snap := d.Debug()
	assert.Equal(t, []string{"core"}, snap.Direct)
	assert.Equal(t, []string{"api", "auth", "web"}, snap.Dependent)

	r, _ := d.Reason(domain.NewInternedString("web"))
	assert.Equal(t, domain.ReasonDependent, r)
}

func TestCompute_DirectOnlyNeverPropagates(t *testing.T) {
	t.Parallel()

	cfg := domain.Config{TargetTask: "test", Mode: domain.ModeOnlyDirect, AlwaysRun: ids("B")}
	d := compute(t, twoModules(t), domain.NewChangeSet("moduleA/a.x"), cfg)

	assert.Equal(t, []string{"A", "B"}, domain.Strings(d.Affected()))
	r, _ := d.Reason(domain.NewInternedString("B"))
	assert.Equal(t, domain.ReasonAlwaysRun, r, "B runs because of alwaysRun, not because of A")
	assert.Empty(t, d.Debug().Dependent)
}

func TestCompute_Notices(t *testing.T) {
	t.Parallel()

	cfg := domain.Config{
		TargetTask: "test",
		AlwaysRun:  ids("ghost"),
		AllowList:  ids("A", "phantom"),
	}
	d := compute(t, twoModules(t), domain.NewChangeSet("elsewhere/file.txt", "moduleA/x"), cfg)

	kinds := map[domain.NoticeKind]int{}
	for _, n := range d.Notices() {
		kinds[n.Kind]++
	}
	assert.Equal(t, 2, kinds[domain.NoticeUnknownOverride])
	assert.Equal(t, 1, kinds[domain.NoticeUnownedFile])

	// The unknown allow-list entry is dropped, the known one still restricts.
	assert.Equal(t, []string{"A"}, domain.Strings(d.Affected()))
	assert.Equal(t, []string{"A"}, d.Debug().Allow)
}

func TestCompute_RootModuleOwnsStrayFiles(t *testing.T) {
	t.Parallel()

	reg, err := domain.NewRegistry(mod("root", "."), mod("A", "moduleA"), mod("B", "moduleB", "A"))
	require.NoError(t, err)

	d := compute(t, reg, domain.NewChangeSet("settings.txt"), domain.Config{TargetTask: "test"})
	assert.Equal(t, []string{"root"}, domain.Strings(d.Affected()))
	assert.Empty(t, d.Notices())
}

func TestCompute_Idempotent(t *testing.T) {
	t.Parallel()

	reg := twoModules(t)
	eng := newEngine(t)
	cfg := domain.Config{TargetTask: "test", IgnoredPatterns: []string{`\.md$`}, AlwaysRun: ids("A")}
	changes := domain.NewChangeSet("moduleB/x", "moduleA/doc.md", "nowhere/y")

	first, err := eng.Compute(context.Background(), reg, changes, cfg)
	require.NoError(t, err)
	second, err := eng.Compute(context.Background(), reg, changes, cfg)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Affected(), second.Affected())
	assert.Equal(t, first.Debug(), second.Debug())
	assert.Equal(t, first.Notices(), second.Notices())
	for _, id := range reg.IDs() {
		r1, _ := first.Reason(id)
		r2, _ := second.Reason(id)
		assert.Equal(t, r1, r2, id.String())
	}
}

func TestCompute_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  domain.Config
	}{
		{"missing task", domain.Config{}},
		{"separator prefix", domain.Config{TargetTask: ":test"}},
		{"bad mode", domain.Config{TargetTask: "test", Mode: "EVERYTHING"}},
		{"bad pattern", domain.Config{TargetTask: "test", AffectsAllPatterns: []string{"(unclosed"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := newEngine(t).Compute(context.Background(), twoModules(t), domain.AllChanged(), tt.cfg)
			require.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Nil(t, d, "no partial decisions on fatal errors")
		})
	}
}

func TestCompute_UnknownOverrideWarnsWithoutDebug(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	reg, err := domain.NewRegistry(mod("x", "x"))
	require.NoError(t, err)

	eng := affected.NewEngine(log, telemetry.NewNoOpTracer())
	_, err = eng.Compute(context.Background(), reg, domain.NewChangeSet(), domain.Config{
		TargetTask: "test",
		NeverRun:   ids("typo"),
	})
	require.NoError(t, err)
}

func TestCompute_DebugPrintsSnapshot(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var lines []string
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) { lines = append(lines, msg) }).AnyTimes()

	eng := affected.NewEngine(log, telemetry.NewNoOpTracer())
	_, err := eng.Compute(context.Background(), twoModules(t), domain.NewChangeSet("moduleA/x", "loose.txt"),
		domain.Config{TargetTask: "test", Debug: true})
	require.NoError(t, err)

	assert.Contains(t, lines, "  target task: test")
	assert.Contains(t, lines, "directly affected: A")
	assert.Contains(t, lines, "dependent affected: B")
	assert.Contains(t, lines, `changed file "loose.txt" is not owned by any module`)
}

func TestCompute_PhaseSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		changes domain.ChangeSet
		want    []string
	}{
		{
			name:    "graph expanded",
			changes: domain.NewChangeSet("moduleA/x"),
			want:    []string{"compute", "validate", "resolve-overrides", "classify", "map-owners", "expand-dependents"},
		},
		{
			name:    "global shortcut",
			changes: domain.AllChanged(),
			want:    []string{"compute", "validate", "resolve-overrides", "classify"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			tracer := mocks.NewMockTracer(ctrl)
			span := mocks.NewMockSpan(ctrl)
			span.EXPECT().End().AnyTimes()
			span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

			var names []string
			tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
					names = append(names, name)
					return ctx, span
				}).AnyTimes()

			eng := affected.NewEngine(quietLogger(t), tracer)
			_, err := eng.Compute(context.Background(), twoModules(t), tt.changes, domain.Config{TargetTask: "t"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCompute_InvalidConfigStopsAfterValidate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).Times(1)

	var names []string
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			names = append(names, name)
			return ctx, span
		}).AnyTimes()

	eng := affected.NewEngine(quietLogger(t), tracer)
	decisions, err := eng.Compute(context.Background(), twoModules(t), domain.NewChangeSet("moduleA/x"), domain.Config{})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Nil(t, decisions)
	assert.Equal(t, []string{"compute", "validate"}, names)
}

func TestPhase_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INIT", affected.PhaseInit.String())
	assert.Equal(t, "GLOBAL_SHORTCUT", affected.PhaseGlobalShortcut.String())
	assert.Equal(t, "FINALIZED", affected.PhaseFinalized.String())
	assert.Equal(t, "UNKNOWN", affected.Phase(42).String())
}
