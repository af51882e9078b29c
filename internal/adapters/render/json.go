package render

import (
	"encoding/json"
	"io"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

// FormatJSON is the name of the JSON output format.
const FormatJSON = "json"

// JSON renders pipelines as indented JSON.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// Format returns the format name.
func (*JSON) Format() string {
	return FormatJSON
}

// Render writes the pipeline document to w.
func (*JSON) Render(w io.Writer, p *domain.Pipeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(newDocument(p)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to encode pipeline"), "format", FormatJSON)
	}
	return nil
}
