package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/rendergate/internal/formatter"
)

func TestParseDataLeniency(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"not json":   "{not json",
		"raw value":  "42",
		"json null":  "null",
		"json array": `[1,2]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			data := parseData([]byte(raw))
			assert.NotNil(t, data)
			assert.Empty(t, data)
		})
	}
}

func TestParseDataValid(t *testing.T) {
	data := parseData([]byte(`{"name":"Ada","total":10}`))
	assert.Equal(t, "Ada", data["name"])
	assert.Equal(t, float64(10), data["total"])
}

func TestResolveOptionsDefaults(t *testing.T) {
	opts := resolveOptions(nil, "invoice.docx")
	assert.Equal(t, "docx", opts.ConvertTo)
	assert.Equal(t, "invoice.docx", opts.OutputName)
	assert.Equal(t, "docx", opts.SourceFormat)
}

func TestResolveOptionsMalformedFallsBackToDefaults(t *testing.T) {
	opts := resolveOptions([]byte("definitely not json"), "report.md")
	assert.Equal(t, "md", opts.ConvertTo)
	assert.Equal(t, "report.md", opts.OutputName)
}

func TestResolveOptionsExplicit(t *testing.T) {
	opts := resolveOptions([]byte(`{"convertTo":"pdf"}`), "invoice.docx")
	assert.Equal(t, "pdf", opts.ConvertTo)
	assert.Equal(t, "invoice.pdf", opts.OutputName)
	assert.Equal(t, "docx", opts.SourceFormat)
}

func TestResolveOptionsExplicitOutputName(t *testing.T) {
	opts := resolveOptions([]byte(`{"convertTo":"pdf","outputName":"final.pdf"}`), "invoice.docx")
	assert.Equal(t, "final.pdf", opts.OutputName)
}

func TestResolveOptionsDottedStem(t *testing.T) {
	opts := resolveOptions(nil, "q3.report.docx")
	assert.Equal(t, "q3.report.docx", opts.OutputName)
	assert.Equal(t, "docx", opts.ConvertTo)
}

func TestParseFormattersLeniency(t *testing.T) {
	baseline := formatter.Builtins()
	assert.Empty(t, parseFormatters([]byte("{bad"), baseline))
	assert.Empty(t, parseFormatters([]byte(`{"x":{"ops":[{"name":"unknown"}]}}`), baseline))
	assert.Empty(t, parseFormatters(nil, baseline))
}

func TestParseFormattersValid(t *testing.T) {
	set := parseFormatters([]byte(`{"shout":{"ops":[{"name":"upper"}]}}`), formatter.Builtins())
	assert.Len(t, set, 1)
	assert.Contains(t, set, "shout")
}
