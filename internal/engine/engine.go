// Package engine defines the rendering capability the gateway orchestrates.
// The pipeline treats the engine as opaque: a function from template, data,
// options and formatters to document bytes. The built-in TagEngine covers
// text-based templates; alternative engines (external converters) plug in
// behind the same interface.
package engine

import (
	"context"

	"git.home.luguber.info/inful/rendergate/internal/formatter"
)

// Options carries the per-render configuration resolved by the pipeline.
type Options struct {
	// ConvertTo is the requested target format. Defaults to the template's
	// own extension when the caller supplies none.
	ConvertTo string

	// OutputName is the delivered file name. Defaults to the template stem
	// plus ConvertTo.
	OutputName string

	// SourceFormat is the template's own format, taken from its filename
	// extension. The engine uses it to decide whether a conversion step
	// applies.
	SourceFormat string
}

// Engine merges a template with data and formatters into a document.
type Engine interface {
	// Render produces the document bytes. Implementations must honor
	// context cancellation; the pipeline bounds calls with a deadline.
	Render(ctx context.Context, template []byte, data map[string]any, opts Options, formatters formatter.Set) ([]byte, error)
}
