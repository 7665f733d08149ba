package render

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/rendergate/internal/engine"
	"git.home.luguber.info/inful/rendergate/internal/formatter"
	"git.home.luguber.info/inful/rendergate/internal/logfields"
)

// Request is one inbound render directive, decoded from the multipart
// form but not yet validated. Raw fields carry the optional JSON payloads
// exactly as received; the pipeline applies the leniency policy to them.
type Request struct {
	RequestID string

	// Template is the uploaded template content; Filename its original
	// upload name (used for option defaulting).
	Template []byte
	Filename string

	RawData       []byte
	RawOptions    []byte
	RawFormatters []byte
	RawEmail      []byte
}

// DeliveryMode identifies the primary delivery channel of an outcome.
type DeliveryMode string

const (
	DeliveryStored DeliveryMode = "stored"
	DeliveryInline DeliveryMode = "inline"
)

// Outcome describes a completed render: exactly one delivery mode, plus
// the data the HTTP layer needs to answer.
type Outcome struct {
	Mode       DeliveryMode
	Hash       string // set when Mode == DeliveryStored
	Body       []byte // set when Mode == DeliveryInline
	OutputName string
	Emailed    bool
}

// wireOptions is the caller-supplied options shape.
type wireOptions struct {
	ConvertTo  string `json:"convertTo"`
	OutputName string `json:"outputName"`
}

// parseData decodes the data payload. Malformed or absent input degrades
// to an empty mapping: rendering with no data is valid, a request must
// never fail on optional fields.
func parseData(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		slog.Debug("malformed data payload, rendering with empty mapping", logfields.Error(err))
		return map[string]any{}
	}
	return data
}

// resolveOptions decodes the options payload (leniently) and fills the
// defaults: convertTo from the template's own extension, outputName from
// the template stem plus convertTo.
func resolveOptions(raw []byte, filename string) engine.Options {
	var wire wireOptions
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wire); err != nil {
			slog.Debug("malformed options payload, using defaults", logfields.Error(err))
			wire = wireOptions{}
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	opts := engine.Options{
		ConvertTo:    wire.ConvertTo,
		OutputName:   wire.OutputName,
		SourceFormat: ext,
	}
	if opts.ConvertTo == "" {
		opts.ConvertTo = ext
	}
	if opts.OutputName == "" {
		opts.OutputName = stem + "." + opts.ConvertTo
	}
	return opts
}

// parseFormatters compiles the custom-formatter payload against the
// baseline. Any failure degrades to the empty set.
func parseFormatters(raw []byte, baseline formatter.Set) formatter.Set {
	set, err := formatter.ParseAndCompile(raw, baseline)
	if err != nil {
		slog.Debug("malformed formatters payload, ignoring", logfields.Error(err))
		return formatter.Set{}
	}
	return set
}
