package engine

import (
	"fmt"
	"strings"
)

// A substitution tag references a field of the data payload, optionally
// followed by a formatter chain:
//
//	{d.customer.name}
//	{d.total:round(2):prefix($)}
//
// Path segments are separated by dots; formatter calls are separated by
// colons, with comma-separated arguments in parentheses. Arguments are
// taken literally (surrounding single or double quotes stripped).

type tag struct {
	path  []string
	chain []call
}

type call struct {
	name string
	args []string
}

// parseTag parses the inside of a tag, the text between "{d" and "}".
func parseTag(body string) (tag, error) {
	var t tag

	rest := body
	if strings.HasPrefix(rest, ".") {
		end := len(rest)
		if i := strings.Index(rest, ":"); i >= 0 {
			end = i
		}
		pathPart := rest[1:end]
		if pathPart == "" {
			return t, fmt.Errorf("empty field path")
		}
		t.path = strings.Split(pathPart, ".")
		for _, seg := range t.path {
			if seg == "" {
				return t, fmt.Errorf("empty path segment in %q", pathPart)
			}
		}
		rest = rest[end:]
	}

	for rest != "" {
		if !strings.HasPrefix(rest, ":") {
			return t, fmt.Errorf("unexpected %q in tag", rest)
		}
		rest = rest[1:]

		nameEnd := len(rest)
		for i := 0; i < len(rest); i++ {
			if rest[i] == '(' || rest[i] == ':' {
				nameEnd = i
				break
			}
		}
		name := rest[:nameEnd]
		if name == "" {
			return t, fmt.Errorf("empty formatter name")
		}
		rest = rest[nameEnd:]

		var args []string
		if strings.HasPrefix(rest, "(") {
			close := strings.Index(rest, ")")
			if close < 0 {
				return t, fmt.Errorf("unterminated argument list for %q", name)
			}
			argsPart := rest[1:close]
			if argsPart != "" {
				for _, raw := range strings.Split(argsPart, ",") {
					args = append(args, unquote(strings.TrimSpace(raw)))
				}
			}
			rest = rest[close+1:]
		}

		t.chain = append(t.chain, call{name: name, args: args})
	}

	return t, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// resolvePath walks the data mapping along the tag path. Missing fields
// resolve to nil; the caller renders nil as an empty string.
func resolvePath(data map[string]any, path []string) any {
	var current any = data
	for _, seg := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return current
}
