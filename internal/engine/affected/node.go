package affected

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/affected/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/affected/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/affected/internal/core/ports"
)

// NodeID is the unique identifier for the affected-set engine Graft node.
const NodeID graft.ID = "engine.affected"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewEngine(log, tracer), nil
		},
	})
}
