package engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/rendergate/internal/formatter"
)

// TagEngine is the built-in substitution engine. It replaces {d.*} tags in
// text-based templates with values from the data payload, applying any
// formatter chain, and performs markdown-to-HTML conversion when asked.
type TagEngine struct {
	md goldmark.Markdown
}

// NewTagEngine constructs the built-in engine.
func NewTagEngine() *TagEngine {
	return &TagEngine{md: goldmark.New()}
}

// Render implements Engine.
func (e *TagEngine) Render(ctx context.Context, template []byte, data map[string]any, opts Options, formatters formatter.Set) ([]byte, error) {
	rendered, err := e.substitute(ctx, template, data, formatters)
	if err != nil {
		return nil, err
	}

	if isMarkdown(opts.SourceFormat) && strings.EqualFold(opts.ConvertTo, "html") {
		var buf bytes.Buffer
		if err := e.md.Convert(rendered, &buf); err != nil {
			return nil, fmt.Errorf("markdown conversion: %w", err)
		}
		return buf.Bytes(), nil
	}

	// Other target formats pass bytes through; ConvertTo then only affects
	// the delivered file name.
	return rendered, nil
}

func (e *TagEngine) substitute(ctx context.Context, template []byte, data map[string]any, formatters formatter.Set) ([]byte, error) {
	var out bytes.Buffer
	src := string(template)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := indexTag(src)
		if start < 0 {
			out.WriteString(src)
			break
		}
		out.WriteString(src[:start])
		src = src[start:]

		end := strings.IndexByte(src, '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated tag near %q", truncate(src, 24))
		}

		body := src[2:end] // strip leading "{d"
		src = src[end+1:]

		t, err := parseTag(body)
		if err != nil {
			return nil, fmt.Errorf("bad tag {d%s}: %w", body, err)
		}

		value := resolvePath(data, t.path)
		for _, c := range t.chain {
			fn, ok := formatters[c.name]
			if !ok {
				return nil, fmt.Errorf("unknown formatter %q", c.name)
			}
			value, err = fn(value, c.args)
			if err != nil {
				return nil, fmt.Errorf("formatter %q: %w", c.name, err)
			}
		}

		out.WriteString(formatter.Stringify(value))
	}

	return out.Bytes(), nil
}

// indexTag finds the next "{d" that opens a tag: it must be followed by
// '.', ':' or '}'. Anything else is literal text.
func indexTag(s string) int {
	for i := 0; ; {
		j := strings.Index(s[i:], "{d")
		if j < 0 {
			return -1
		}
		pos := i + j
		if pos+2 < len(s) {
			switch s[pos+2] {
			case '.', ':', '}':
				return pos
			}
		}
		i = pos + 2
	}
}

func isMarkdown(format string) bool {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
