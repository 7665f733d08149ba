package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Builtins returns the baseline formatter set shipped with the engine.
func Builtins() Set {
	titleCaser := cases.Title(language.Und)

	return Set{
		"upper": func(v any, _ []string) (any, error) {
			return strings.ToUpper(asString(v)), nil
		},
		"lower": func(v any, _ []string) (any, error) {
			return strings.ToLower(asString(v)), nil
		},
		"ucFirst": func(v any, _ []string) (any, error) {
			s := asString(v)
			if s == "" {
				return s, nil
			}
			return strings.ToUpper(s[:1]) + s[1:], nil
		},
		"title": func(v any, _ []string) (any, error) {
			return titleCaser.String(asString(v)), nil
		},
		"trim": func(v any, _ []string) (any, error) {
			return strings.TrimSpace(asString(v)), nil
		},
		"prefix": func(v any, args []string) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("prefix expects 1 argument, got %d", len(args))
			}
			return args[0] + asString(v), nil
		},
		"suffix": func(v any, args []string) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("suffix expects 1 argument, got %d", len(args))
			}
			return asString(v) + args[0], nil
		},
		"substr": func(v any, args []string) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("substr expects 2 arguments, got %d", len(args))
			}
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("substr start: %w", err)
			}
			end, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, fmt.Errorf("substr end: %w", err)
			}
			s := asString(v)
			if start < 0 {
				start = 0
			}
			if end > len(s) {
				end = len(s)
			}
			if start >= end {
				return "", nil
			}
			return s[start:end], nil
		},
		"padl": func(v any, args []string) (any, error) {
			if len(args) < 1 {
				return nil, fmt.Errorf("padl expects at least a width argument")
			}
			width, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("padl width: %w", err)
			}
			pad := " "
			if len(args) > 1 && args[1] != "" {
				pad = args[1][:1]
			}
			s := asString(v)
			for len(s) < width {
				s = pad + s
			}
			return s, nil
		},
		"round": func(v any, args []string) (any, error) {
			n, err := asFloat(v)
			if err != nil {
				return nil, err
			}
			decimals := 0
			if len(args) > 0 {
				if decimals, err = strconv.Atoi(args[0]); err != nil {
					return nil, fmt.Errorf("round decimals: %w", err)
				}
			}
			scale := math.Pow10(decimals)
			return math.Round(n*scale) / scale, nil
		},
		"add": func(v any, args []string) (any, error) {
			return arith(v, args, "add", func(a, b float64) float64 { return a + b })
		},
		"mul": func(v any, args []string) (any, error) {
			return arith(v, args, "mul", func(a, b float64) float64 { return a * b })
		},
		"int": func(v any, _ []string) (any, error) {
			n, err := asFloat(v)
			if err != nil {
				return nil, err
			}
			return int64(n), nil
		},
		"formatN": func(v any, args []string) (any, error) {
			n, err := asFloat(v)
			if err != nil {
				return nil, err
			}
			decimals := 2
			if len(args) > 0 {
				if decimals, err = strconv.Atoi(args[0]); err != nil {
					return nil, fmt.Errorf("formatN decimals: %w", err)
				}
			}
			return strconv.FormatFloat(n, 'f', decimals, 64), nil
		},
	}
}

func arith(v any, args []string, name string, op func(a, b float64) float64) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
	}
	a, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	b, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return nil, fmt.Errorf("%s operand: %w", name, err)
	}
	return op(a, b), nil
}

// asString renders any substitution value as a string. Floats that carry an
// integral value print without a decimal point, matching how spreadsheet
// data round-trips through JSON.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// Stringify exposes the substitution string rendering for the engine.
func Stringify(v any) string {
	return asString(v)
}
