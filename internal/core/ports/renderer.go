package ports

import (
	"io"

	"go.trai.ch/stagehand/internal/core/domain"
)

// Renderer writes a pipeline in one output format.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Format returns the name the renderer is selected by, e.g. "json".
	Format() string
	// Render writes p to w.
	Render(w io.Writer, p *domain.Pipeline) error
}

// RendererRegistry resolves renderers by format name.
type RendererRegistry interface {
	// ByFormat returns the renderer for format or a domain.ErrUnknownFormat error.
	ByFormat(format string) (Renderer, error)
	// Formats lists the supported format names.
	Formats() []string
}
