// Package app implements the application layer for stagehand.
package app

import (
	"context"
	"io"
	"time"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/stagehand/internal/engine/generator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	generator     *generator.Generator
	renderers     ports.RendererRegistry
	fingerprinter ports.Fingerprinter
	store         ports.PlanStore
	logger        ports.Logger
	now           func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	gen *generator.Generator,
	renderers ports.RendererRegistry,
	fingerprinter ports.Fingerprinter,
	store ports.PlanStore,
	log ports.Logger,
) *App {
	return &App{
		configLoader:  loader,
		generator:     gen,
		renderers:     renderers,
		fingerprinter: fingerprinter,
		store:         store,
		logger:        log,
		now:           time.Now,
	}
}

// WithClock replaces the clock used to timestamp recorded plans.
// This is primarily used for testing.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// GenerateOptions configuration for the Generate method.
type GenerateOptions struct {
	ConfigPath string
	Format     string
	Output     io.Writer
	Record     bool
}

// Generate builds the pipeline of a configuration and renders it to the output.
// With Record set, the fingerprint of the pipeline is stored for later drift checks.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) (*domain.Pipeline, error) {
	// 1. Resolve the renderer before doing any work
	renderer, err := a.renderers.ByFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	// 2. Build the pipeline
	pipeline, err := a.load(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	// 3. Render
	if err := renderer.Render(opts.Output, pipeline); err != nil {
		return nil, zerr.Wrap(err, "failed to render pipeline")
	}

	// 4. Record
	if opts.Record {
		if err := a.record(pipeline); err != nil {
			return nil, err
		}
	}

	return pipeline, nil
}

// Check regenerates the pipeline and compares its fingerprint with the recorded one.
// It returns ErrPlanDrift when they differ or when nothing has been recorded yet.
func (a *App) Check(ctx context.Context, configPath string) error {
	pipeline, err := a.load(ctx, configPath)
	if err != nil {
		return err
	}

	current, err := a.fingerprinter.Fingerprint(pipeline)
	if err != nil {
		return zerr.Wrap(err, "failed to fingerprint pipeline")
	}

	rec, err := a.store.Get(pipeline.Project)
	if err != nil {
		return zerr.Wrap(err, "failed to read recorded plan")
	}
	if rec == nil {
		err := zerr.With(zerr.Wrap(domain.ErrPlanDrift, "no plan has been recorded"), "project", pipeline.Project)
		return zerr.With(err, "current", current)
	}
	if rec.Fingerprint != current {
		err := zerr.With(zerr.Wrap(domain.ErrPlanDrift, "generated plan differs from the recorded plan"),
			"project", pipeline.Project)
		err = zerr.With(err, "recorded", rec.Fingerprint)
		return zerr.With(err, "current", current)
	}

	a.logger.Info("plan is up to date", "project", pipeline.Project, "fingerprint", current)
	return nil
}

// Stages returns the stages of a configuration in execution order.
func (a *App) Stages(ctx context.Context, configPath string) ([]domain.Stage, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return a.generator.Stages(ctx, cfg)
}

func (a *App) load(ctx context.Context, configPath string) (*domain.Pipeline, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	pipeline, err := a.generator.Generate(ctx, cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to generate pipeline")
	}
	return pipeline, nil
}

func (a *App) record(p *domain.Pipeline) error {
	fp, err := a.fingerprinter.Fingerprint(p)
	if err != nil {
		return zerr.Wrap(err, "failed to fingerprint pipeline")
	}

	rec := domain.PlanRecord{
		Project:     p.Project,
		Fingerprint: fp,
		Nodes:       len(p.Nodes),
		Edges:       len(p.Edges),
		Timestamp:   a.now().UTC(),
	}
	if err := a.store.Put(rec); err != nil {
		return zerr.Wrap(err, "failed to record plan")
	}

	a.logger.Info("plan recorded", "project", p.Project, "fingerprint", fp)
	return nil
}
