package cas

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
)

// NodeID is the unique identifier for the plan store Graft node.
const NodeID graft.ID = "adapter.plan_store"

func init() {
	graft.Register(graft.Node[ports.PlanStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PlanStore, error) {
			store, err := NewStore(filepath.Join(domain.DefaultStateDir, domain.StateFileName))
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
