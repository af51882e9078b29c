package generator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stagehand/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stagehand/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stagehand/internal/core/ports"
)

// NodeID is the unique identifier for the generator Graft node.
const NodeID graft.ID = "engine.generator"

func init() {
	graft.Register(graft.Node[*Generator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Generator, error) {
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(tracer, log), nil
		},
	})
}
