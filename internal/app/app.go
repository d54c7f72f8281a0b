// Package app implements the application layer for affected.
package app

import (
	"context"
	"errors"
	"io"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/affected/internal/adapters/config"
	"go.trai.ch/affected/internal/adapters/telemetry"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/affected/internal/engine/affected"
	"go.trai.ch/affected/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Source names where a computation's changed files came from.
type Source string

const (
	// SourceFiles is an explicit list of files.
	SourceFiles Source = "files"
	// SourcePatch is a unified diff.
	SourcePatch Source = "patch"
	// SourceGit is the git history or working tree.
	SourceGit Source = "git"
	// SourceLastRun is the git history since the last successful run.
	SourceLastRun Source = "last-run"
	// SourceForced means every module was marked as changed.
	SourceForced Source = "forced"
	// SourceWatch is a batch of file system events.
	SourceWatch Source = "watch"
)

// App represents the main application logic.
type App struct {
	loader        ports.WorkspaceLoader
	changes       ports.ChangeSource
	patches       ports.PatchReader
	store         ports.RunRecordStore
	fingerprinter ports.Fingerprinter
	watcher       ports.Watcher
	renderer      ports.Renderer
	logger        ports.Logger
	engine        *affected.Engine
	scheduler     *scheduler.Scheduler
	tracer        *telemetry.OTelTracer
}

// New creates a new App instance.
func New(
	loader ports.WorkspaceLoader,
	changes ports.ChangeSource,
	patches ports.PatchReader,
	store ports.RunRecordStore,
	fingerprinter ports.Fingerprinter,
	watcher ports.Watcher,
	renderer ports.Renderer,
	log ports.Logger,
	engine *affected.Engine,
	sched *scheduler.Scheduler,
	tracer *telemetry.OTelTracer,
) *App {
	return &App{
		loader:        loader,
		changes:       changes,
		patches:       patches,
		store:         store,
		fingerprinter: fingerprinter,
		watcher:       watcher,
		renderer:      renderer,
		logger:        log,
		engine:        engine,
		scheduler:     sched,
		tracer:        tracer,
	}
}

// ComputeOptions configures a computation.
type ComputeOptions struct {
	// Cwd is where the workspace file search starts.
	Cwd string
	// Overrides are layered over the workfile configuration.
	Overrides config.Overrides
	// Files, when set, are the changed files relative to the workspace root.
	Files []string
	// Patch, when set, is a unified diff whose files are the changed files.
	Patch io.Reader
}

// Result is the outcome of a computation.
type Result struct {
	Workspace *domain.Workspace
	Config    domain.Config
	Changes   domain.ChangeSet
	Source    Source
	// Base is the revision changes were resolved against, if any.
	Base      string
	Decisions *domain.DecisionSet
}

// Compute loads the workspace, resolves the changed files and computes the
// affected modules.
func (a *App) Compute(ctx context.Context, opts ComputeOptions) (*Result, error) {
	ws, err := a.loader.Load(opts.Cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load workspace")
	}

	cfg := opts.Overrides.Apply(ws.Config)
	a.applyDebug(cfg)

	res, err := a.resolveChanges(ctx, ws, cfg, opts)
	if err != nil {
		return nil, err
	}
	res.Workspace = ws
	res.Config = cfg

	a.logger.Debug("resolved changes from " + string(res.Source) + ": " + res.Changes.String())

	decisions, err := a.engine.Compute(ctx, ws.Registry, res.Changes, cfg)
	if err != nil {
		return nil, err
	}
	res.Decisions = decisions
	return res, nil
}

// debugSetter is implemented by loggers whose level can change at runtime.
type debugSetter interface {
	SetDebug(enable bool)
}

// applyDebug raises the logger to debug level when the resolved config asks
// for it. Debug output is never switched off here.
func (a *App) applyDebug(cfg domain.Config) {
	if !cfg.Debug {
		return
	}
	if l, ok := a.logger.(debugSetter); ok {
		l.SetDebug(true)
	}
}

func (a *App) resolveChanges(
	ctx context.Context,
	ws *domain.Workspace,
	cfg domain.Config,
	opts ComputeOptions,
) (*Result, error) {
	if opts.Overrides.All {
		return &Result{Changes: domain.AllChanged(), Source: SourceForced}, nil
	}

	if len(opts.Files) > 0 {
		return &Result{Changes: domain.NewChangeSet(opts.Files...), Source: SourceFiles}, nil
	}

	if opts.Patch != nil {
		changes, err := a.patches.ChangedFiles(opts.Patch)
		if err != nil {
			return nil, err
		}
		return &Result{Changes: changes, Source: SourcePatch}, nil
	}

	req, err := opts.Overrides.ChangeRequest(ws.Root)
	if err != nil {
		return nil, err
	}

	source := SourceGit
	if req.Mode == domain.CompareCommit && req.PreviousRef == "" {
		base, trusted, err := a.lastRunBase(ws, cfg.TargetTask)
		if err != nil {
			return nil, err
		}
		if !trusted {
			return &Result{Changes: domain.AllChanged(), Source: SourceLastRun}, nil
		}
		req.PreviousRef = base
		source = SourceLastRun
	}

	changes, err := a.changes.ResolveChanges(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{Changes: changes, Source: source, Base: req.PreviousRef}, nil
}

// lastRunBase returns the revision of the last successful run of target. The
// base is only trusted when the module layout has not changed since.
func (a *App) lastRunBase(ws *domain.Workspace, target string) (string, bool, error) {
	record, err := a.store.Get(ws.Root, target)
	if err != nil {
		return "", false, err
	}
	if record == nil || record.Ref == "" {
		a.logger.Debug("no previous successful run of " + target + ", treating every module as changed")
		return "", false, nil
	}

	fingerprint, err := a.fingerprinter.Fingerprint(ws)
	if err != nil {
		return "", false, err
	}
	if fingerprint != record.Fingerprint {
		a.logger.Info("module layout changed since the last successful run, treating every module as changed")
		return "", false, nil
	}

	a.logger.Debug("comparing against last successful run at " + record.Ref)
	return record.Ref, true, nil
}

// RunOptions configures Run.
type RunOptions struct {
	ComputeOptions
	// Parallelism bounds concurrently running tasks. Zero selects the CPU count.
	Parallelism int
	// Args are appended to every task command. When empty, the arguments
	// from the overrides apply.
	Args []string
}

// Run computes the affected modules and runs the target task of each of them.
// A successful run against git history is recorded so the next run without an
// explicit base compares against it.
func (a *App) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	res, err := a.Compute(ctx, opts.ComputeOptions)
	if err != nil {
		return nil, err
	}

	args := opts.Args
	if len(args) == 0 {
		args = opts.Overrides.Args
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	tp := setupOTel(telemetry.NewBridge(a.renderer))
	defer func() {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}()
	a.tracer.WithRenderer(a.renderer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.renderer.Start(gctx); err != nil {
			return err
		}
		return a.renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = a.renderer.Stop()
		}()

		err := a.scheduler.Run(gctx, res.Workspace.Registry, res.Decisions, res.Config.TargetTask, args, parallelism)
		if err != nil {
			return errors.Join(domain.ErrRunFailed, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return res, err
	}

	if res.Source == SourceGit || res.Source == SourceLastRun {
		a.recordRun(ctx, res, opts.Overrides)
	}
	return res, nil
}

// recordRun stores the revision a successful run was computed at. Failures
// only cost the next run its baseline, so they are reported and ignored.
func (a *App) recordRun(ctx context.Context, res *Result, ov config.Overrides) {
	mode, err := domain.ParseCompareMode(ov.Compare)
	if err != nil || mode != domain.CompareCommit {
		return
	}

	root := res.Workspace.Root
	ref, err := a.changes.Revision(ctx, root, ov.Head)
	if err != nil {
		a.logger.Warn("not recording run: " + err.Error())
		return
	}

	fingerprint, err := a.fingerprinter.Fingerprint(res.Workspace)
	if err != nil {
		a.logger.Warn("not recording run: " + err.Error())
		return
	}

	record := domain.RunRecord{
		Target:      res.Config.TargetTask,
		Ref:         ref,
		Fingerprint: fingerprint,
		Modules:     domain.Strings(res.Decisions.Affected()),
		Timestamp:   time.Now().UTC(),
	}
	if err := a.store.Put(root, record); err != nil {
		a.logger.Warn("not recording run: " + err.Error())
	}
}

// setupOTel installs a global tracer provider that forwards spans to the renderer.
func setupOTel(bridge *telemetry.Bridge) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
	return tp
}
