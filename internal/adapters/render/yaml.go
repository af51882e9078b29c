package render

import (
	"io"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FormatYAML is the name of the YAML output format.
const FormatYAML = "yaml"

// YAML renders pipelines as YAML documents.
type YAML struct{}

// NewYAML creates a YAML renderer.
func NewYAML() *YAML {
	return &YAML{}
}

// Format returns the format name.
func (*YAML) Format() string {
	return FormatYAML
}

// Render writes the pipeline document to w.
func (*YAML) Render(w io.Writer, p *domain.Pipeline) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(p)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to encode pipeline"), "format", FormatYAML)
	}
	if err := enc.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to flush pipeline"), "format", FormatYAML)
	}
	return nil
}
