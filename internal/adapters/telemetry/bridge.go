package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/zerr"
)

// Bridge implements sdktrace.SpanProcessor and reports finished spans to a Logger.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{
		logger: logger,
	}
}

// OnStart does nothing; spans are reported once they end.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "phase failed"
		}
		b.logger.Warn("phase failed", "phase", s.Name(), "error", desc)
		return
	}

	b.logger.Info("phase finished", "phase", s.Name(), "duration", s.EndTime().Sub(s.StartTime()).String())
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// InstallBridge registers a global tracer provider that reports spans to logger.
// The returned function shuts the provider down.
func InstallBridge(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(logger)))
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return zerr.Wrap(err, "failed to shut down tracer provider")
		}
		return nil
	}
}
