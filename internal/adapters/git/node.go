package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/affected/internal/core/ports"
)

// NodeID is the unique identifier for the git change source Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[ports.ChangeSource]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ChangeSource, error) {
			return NewChangeSource(), nil
		},
	})
}
