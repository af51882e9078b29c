// Package generator turns a pipeline configuration into a resolved, validated plan.
package generator

import (
	"context"
	"runtime"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/stagehand/internal/engine/matrix"
	"go.trai.ch/stagehand/internal/engine/planner"
	"go.trai.ch/stagehand/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Generator orchestrates stage ordering, variant expansion, planning and resolution.
type Generator struct {
	tracer ports.Tracer
	logger ports.Logger
}

// New creates a Generator.
func New(tracer ports.Tracer, logger ports.Logger) *Generator {
	return &Generator{
		tracer: tracer,
		logger: logger,
	}
}

// buildSlot is one (job, variant) pair planned in a fixed output position.
type buildSlot struct {
	stage   domain.Stage
	job     domain.JobSpec
	variant domain.Variant
}

// Generate produces the pipeline for cfg. The same configuration always yields the same
// pipeline.
func (g *Generator) Generate(ctx context.Context, cfg *domain.Config) (*domain.Pipeline, error) {
	ctx, span := g.tracer.Start(ctx, "generate", ports.WithAttribute("project", cfg.Project))
	defer span.End()

	pipeline, err := g.generate(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttribute("nodes", len(pipeline.Nodes))
	span.SetAttribute("edges", len(pipeline.Edges))
	return pipeline, nil
}

func (g *Generator) generate(ctx context.Context, cfg *domain.Config) (*domain.Pipeline, error) {
	stageGraph, order, err := g.stages(ctx, cfg)
	if err != nil {
		return nil, err
	}

	slots, sanityID, err := g.expand(ctx, cfg, stageGraph, order)
	if err != nil {
		return nil, err
	}

	p := planner.New(cfg)
	nodes, err := g.build(ctx, p, slots)
	if err != nil {
		return nil, err
	}

	plan, err := assemble(p, order, slots, nodes)
	if err != nil {
		return nil, err
	}

	if err := g.resolve(ctx, plan, stageGraph, cfg.Prefix, sanityID); err != nil {
		return nil, err
	}

	g.logger.Info("plan generated", "project", cfg.Project, "stages", len(order), "nodes", plan.Len())
	return domain.NewPipeline(cfg.Project, order, plan), nil
}

// Stages returns the configured stages in execution order.
func (g *Generator) Stages(ctx context.Context, cfg *domain.Config) ([]domain.Stage, error) {
	_, order, err := g.stages(ctx, cfg)
	return order, err
}

func (g *Generator) stages(ctx context.Context, cfg *domain.Config) (*domain.StageGraph, []domain.Stage, error) {
	_, span := g.tracer.Start(ctx, "stages")
	defer span.End()

	graph := domain.NewStageGraph()
	for _, s := range cfg.Stages {
		if err := graph.AddStage(s.ID, s.After); err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttribute("stages", graph.Len())
	return graph, order, nil
}

// expand selects the variants of every job. Slots are ordered by stage, then by job
// declaration, then by variant.
func (g *Generator) expand(
	ctx context.Context,
	cfg *domain.Config,
	stages *domain.StageGraph,
	order []domain.Stage,
) ([]buildSlot, domain.InternedString, error) {
	_, span := g.tracer.Start(ctx, "expand")
	defer span.End()

	slots, sanityID, err := expandSlots(cfg, stages, order)
	if err != nil {
		span.RecordError(err)
		return nil, domain.InternedString{}, err
	}
	span.SetAttribute("slots", len(slots))
	return slots, sanityID, nil
}

func expandSlots(
	cfg *domain.Config,
	stages *domain.StageGraph,
	order []domain.Stage,
) ([]buildSlot, domain.InternedString, error) {
	variants, err := matrix.Expand(cfg)
	if err != nil {
		return nil, domain.InternedString{}, err
	}

	var (
		sanityID  domain.InternedString
		sanityJob string
	)
	byStage := make(map[domain.InternedString][]buildSlot, len(order))
	p := planner.New(cfg)

	for _, job := range cfg.Jobs {
		stage, ok := stages.Stage(job.Stage)
		if !ok {
			return nil, domain.InternedString{}, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrMissingStage, "job references an unknown stage"), "job", job.ID), "stage", job.Stage)
		}

		selected, err := matrix.Select(variants, job.Select)
		if err != nil {
			return nil, domain.InternedString{}, zerr.With(err, "job", job.ID)
		}

		if job.SanityCheck {
			if sanityJob != "" {
				return nil, domain.InternedString{}, zerr.With(zerr.With(
					zerr.Wrap(domain.ErrConfiguration, "more than one sanity check job"), "job", job.ID), "sanity_check", sanityJob)
			}
			if len(selected) != 1 {
				return nil, domain.InternedString{}, zerr.With(zerr.With(
					zerr.Wrap(domain.ErrConfiguration, "sanity check job must select exactly one variant"),
					"job", job.ID), "variants", len(selected))
			}
			sanityJob = job.ID
			sanityID = domain.NewInternedString(p.NodeID(job, selected[0]))
		}

		for _, v := range selected {
			byStage[stage.ID()] = append(byStage[stage.ID()], buildSlot{stage: stage, job: job, variant: v})
		}
	}

	if sanityJob == "" {
		return nil, domain.InternedString{}, zerr.Wrap(domain.ErrNoSanityCheck, "no job is marked as the sanity check")
	}

	var slots []buildSlot
	for _, s := range order {
		slots = append(slots, byStage[s.ID()]...)
	}
	return slots, sanityID, nil
}

// build plans every slot concurrently. Each goroutine writes only its own index.
func (g *Generator) build(ctx context.Context, p *planner.Planner, slots []buildSlot) ([]domain.PlanNode, error) {
	ctx, span := g.tracer.Start(ctx, "build")
	defer span.End()

	nodes := make([]domain.PlanNode, len(slots))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, slot := range slots {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			node, err := p.Build(slot.stage, slot.job, slot.variant)
			if err != nil {
				return err
			}
			nodes[i] = node
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("nodes", len(nodes))
	return nodes, nil
}

// assemble adds each stage's build nodes followed by its trigger, in stage order.
func assemble(p *planner.Planner, order []domain.Stage, slots []buildSlot, nodes []domain.PlanNode) (*domain.PlanGraph, error) {
	plan := domain.NewPlanGraph()
	next := 0
	for _, stage := range order {
		for next < len(slots) && slots[next].stage.ID() == stage.ID() {
			if err := plan.AddNode(nodes[next]); err != nil {
				return nil, err
			}
			next++
		}
		if err := plan.AddNode(p.BuildTrigger(stage)); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (g *Generator) resolve(
	ctx context.Context,
	plan *domain.PlanGraph,
	stages *domain.StageGraph,
	prefix string,
	sanityID domain.InternedString,
) error {
	_, span := g.tracer.Start(ctx, "resolve")
	defer span.End()

	r := resolver.New(plan, stages, prefix, sanityID)
	for n := range plan.Nodes() {
		if err := r.Resolve(n); err != nil {
			span.RecordError(err)
			return err
		}
	}

	if err := plan.Validate(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
