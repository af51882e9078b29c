package render

import (
	"slices"
	"strings"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry looks up renderers by format name.
type Registry struct {
	renderers map[string]ports.Renderer
}

// NewRegistry creates a registry holding the given renderers. Later renderers replace
// earlier ones with the same format.
func NewRegistry(renderers ...ports.Renderer) *Registry {
	r := &Registry{renderers: make(map[string]ports.Renderer, len(renderers))}
	for _, rr := range renderers {
		r.renderers[rr.Format()] = rr
	}
	return r
}

// NewDefaultRegistry returns a registry with the JSON, YAML and text renderers.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewJSON(), NewYAML(), NewText())
}

// ByFormat returns the renderer for a format name, ignoring case.
func (r *Registry) ByFormat(format string) (ports.Renderer, error) {
	rr, ok := r.renderers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrUnknownFormat, "no renderer for format"), "format", format)
		return nil, zerr.With(err, "supported", strings.Join(r.Formats(), ","))
	}
	return rr, nil
}

// Formats returns the registered format names in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.renderers))
	for f := range r.renderers {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
