package render

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stagehand/internal/core/ports"
)

// NodeID is the unique identifier for the renderer registry Graft node.
const NodeID graft.ID = "adapter.render"

func init() {
	graft.Register(graft.Node[ports.RendererRegistry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RendererRegistry, error) {
			return NewDefaultRegistry(), nil
		},
	})
}
