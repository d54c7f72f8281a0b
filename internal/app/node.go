package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/affected/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/git"       //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/patch"     //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/affected/internal/engine/affected"
	"go.trai.ch/affected/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			git.NodeID,
			patch.NodeID,
			cas.NodeID,
			fs.FingerprinterNodeID,
			watcher.NodeID,
			linear.NodeID,
			logger.NodeID,
			affected.NodeID,
			scheduler.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.WorkspaceLoader](ctx)
	if err != nil {
		return nil, err
	}

	changes, err := graft.Dep[ports.ChangeSource](ctx)
	if err != nil {
		return nil, err
	}

	patches, err := graft.Dep[ports.PatchReader](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RunRecordStore](ctx)
	if err != nil {
		return nil, err
	}

	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	engine, err := graft.Dep[*affected.Engine](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, changes, patches, store, fingerprinter, w, renderer, log, engine, sched, tracer), nil
}
