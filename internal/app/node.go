package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stagehand/internal/adapters/cas"         //nolint:depguard // Wired in app layer
	"go.trai.ch/stagehand/internal/adapters/config"      //nolint:depguard // Wired in app layer
	"go.trai.ch/stagehand/internal/adapters/fingerprint" //nolint:depguard // Wired in app layer
	"go.trai.ch/stagehand/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/stagehand/internal/adapters/render"      //nolint:depguard // Wired in app layer
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/stagehand/internal/engine/generator"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			generator.NodeID,
			render.NodeID,
			fingerprint.NodeID,
			cas.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			render.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	gen, err := graft.Dep[*generator.Generator](ctx)
	if err != nil {
		return nil, err
	}

	renderers, err := graft.Dep[ports.RendererRegistry](ctx)
	if err != nil {
		return nil, err
	}

	fp, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.PlanStore](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, gen, renderers, fp, store, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	renderers, err := graft.Dep[ports.RendererRegistry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Renderers: renderers,
	}, nil
}
