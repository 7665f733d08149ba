package formatter

import (
	"encoding/json"
	"fmt"
)

// Custom formatters arrive on the wire as declarative pipelines over the
// baseline set rather than as code. A definition names a sequence of ops;
// each op references a baseline formatter with optional arguments:
//
//	{"shout": {"ops": [{"name": "upper"}, {"name": "suffix", "args": ["!"]}]}}
//
// Compilation turns a definition into a Func that threads the value through
// the ops left to right.

// OpSpec is one step of a custom formatter pipeline.
type OpSpec struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// Definition is a named custom formatter: an op pipeline.
type Definition struct {
	Ops []OpSpec `json:"ops"`
}

// ParseDefinitions decodes the raw formatters payload.
func ParseDefinitions(raw []byte) (map[string]Definition, error) {
	var defs map[string]Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse formatter definitions: %w", err)
	}
	return defs, nil
}

// Compile resolves a definition against the baseline set and returns the
// composed Func. Empty pipelines and references to unknown ops are errors.
func Compile(def Definition, baseline Set) (Func, error) {
	if len(def.Ops) == 0 {
		return nil, fmt.Errorf("formatter has no ops")
	}

	steps := make([]struct {
		fn   Func
		args []string
	}, 0, len(def.Ops))
	for _, op := range def.Ops {
		fn, ok := baseline[op.Name]
		if !ok {
			return nil, fmt.Errorf("unknown formatter op %q", op.Name)
		}
		steps = append(steps, struct {
			fn   Func
			args []string
		}{fn: fn, args: op.Args})
	}

	return func(value any, _ []string) (any, error) {
		var err error
		for _, step := range steps {
			value, err = step.fn(value, step.args)
			if err != nil {
				return nil, err
			}
		}
		return value, nil
	}, nil
}

// CompileSet compiles every definition in the payload. A single bad
// definition fails the whole set; the caller decides whether that degrades
// to an empty set (the render pipeline's leniency policy) or surfaces.
func CompileSet(defs map[string]Definition, baseline Set) (Set, error) {
	out := make(Set, len(defs))
	for name, def := range defs {
		fn, err := Compile(def, baseline)
		if err != nil {
			return nil, fmt.Errorf("formatter %q: %w", name, err)
		}
		out[name] = fn
	}
	return out, nil
}

// ParseAndCompile is the one-shot helper the pipeline uses: decode the wire
// payload and compile it against the baseline.
func ParseAndCompile(raw []byte, baseline Set) (Set, error) {
	if len(raw) == 0 {
		return Set{}, nil
	}
	defs, err := ParseDefinitions(raw)
	if err != nil {
		return nil, err
	}
	return CompileSet(defs, baseline)
}
