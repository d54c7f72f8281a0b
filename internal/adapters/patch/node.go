package patch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/affected/internal/core/ports"
)

// NodeID is the unique identifier for the patch reader Graft node.
const NodeID graft.ID = "adapter.patch"

func init() {
	graft.Register(graft.Node[ports.PatchReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PatchReader, error) {
			return NewReader(), nil
		},
	})
}
