package app

import (
	"context"
	"path"

	"go.trai.ch/affected/internal/adapters/config"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch computes the affected modules for every debounced batch of file
// changes and passes each result to onResult. Changes to workspace or module
// files reload the workspace first. It returns when ctx is done or onResult
// fails.
func (a *App) Watch(ctx context.Context, opts ComputeOptions, onResult func(*Result) error) error {
	ws, err := a.loader.Load(opts.Cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load workspace")
	}

	cfg := opts.Overrides.Apply(ws.Config)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.applyDebug(cfg)

	if err := a.watcher.Start(ctx, ws.Root); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	a.logger.Info("watching " + ws.Root + " for changes")

	for event := range a.watcher.Events() {
		if touchesWorkspaceFiles(event.Paths) {
			ws, cfg = a.reload(ws, cfg, opts.Overrides)
		}

		changes := domain.NewChangeSet(event.Paths...)

		decisions, err := a.engine.Compute(ctx, ws.Registry, changes, cfg)
		if err != nil {
			return err
		}

		res := &Result{
			Workspace: ws,
			Config:    cfg,
			Changes:   changes,
			Source:    SourceWatch,
			Decisions: decisions,
		}
		if err := onResult(res); err != nil {
			return err
		}
	}

	return nil
}

// reload loads the workspace again and returns it with its resolved config.
// A workspace that fails to load or resolves to an invalid config is logged
// and the previous one is returned.
func (a *App) reload(
	prev *domain.Workspace,
	prevCfg domain.Config,
	overrides config.Overrides,
) (*domain.Workspace, domain.Config) {
	ws, err := a.loader.Load(prev.Root)
	if err != nil {
		a.logger.Error(zerr.Wrap(err, "failed to reload workspace, keeping the previous one"))
		return prev, prevCfg
	}

	cfg := overrides.Apply(ws.Config)
	if err := cfg.Validate(); err != nil {
		a.logger.Error(zerr.Wrap(err, "reloaded workspace config is invalid, keeping the previous one"))
		return prev, prevCfg
	}
	a.applyDebug(cfg)

	a.logger.Info("workspace reloaded")
	return ws, cfg
}

func touchesWorkspaceFiles(paths []string) bool {
	for _, p := range paths {
		switch path.Base(p) {
		case domain.WorkFileName, domain.ModuleFileName:
			return true
		}
	}
	return false
}
