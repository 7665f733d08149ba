// Package formatter holds the process-wide catalog of named formatter
// functions the rendering engine applies during substitution. The catalog
// supports a baseline set (the builtins, flagged default at startup) plus
// per-request custom additions.
//
// The registry is one shared mutable resource. Individual operations are
// atomic, but the arm/render/disarm sequence spanning a request is not;
// the render pipeline serializes that sequence under its own mutex. No
// custom formatter may outlive the request that introduced it.
package formatter

import "sync"

// Func is a single formatter: it transforms a value, optionally steered by
// string arguments from the template tag (or the custom-formatter pipeline).
type Func func(value any, args []string) (any, error)

// Set maps formatter names to functions.
type Set map[string]Func

// Entry is a registered formatter with its default flag. Entries flagged
// default belong to the baseline shipped with the engine; everything else
// is request-scoped.
type Entry struct {
	Name      string
	Fn        Func
	IsDefault bool
}

// Registry is the process-wide formatter catalog.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	baseline Set // immutable snapshot captured by MarkBaseline
}

// NewRegistry creates a registry pre-loaded with the builtin formatters.
// Call MarkBaseline once after any additional startup registration.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Entry)}
	for name, fn := range Builtins() {
		r.entries[name] = Entry{Name: name, Fn: fn}
	}
	return r
}

// Register adds a single formatter to the live registry.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = Entry{Name: name, Fn: fn, IsDefault: r.baseline != nil && r.baseline[name] != nil}
}

// MarkBaseline flags every currently registered formatter as default and
// captures the immutable baseline snapshot restoration works from. Invoked
// exactly once, at process start, after the builtins are loaded.
func (r *Registry) MarkBaseline() {
	r.mu.Lock()
	defer r.mu.Unlock()

	baseline := make(Set, len(r.entries))
	for name, entry := range r.entries {
		entry.IsDefault = true
		r.entries[name] = entry
		baseline[name] = entry.Fn
	}
	r.baseline = baseline
}

// SnapshotDefaults returns the default-flagged subset of the registry.
func (r *Registry) SnapshotDefaults() Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(Set)
	for name, entry := range r.entries {
		if entry.IsDefault {
			out[name] = entry.Fn
		}
	}
	return out
}

// ReplaceAll atomically swaps the entire registry contents with newSet.
// Entries that exist in the baseline keep their default flag.
func (r *Registry) ReplaceAll(newSet Set) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make(map[string]Entry, len(newSet))
	for name, fn := range newSet {
		entries[name] = Entry{Name: name, Fn: fn, IsDefault: r.baseline[name] != nil}
	}
	r.entries = entries
}

// AddCustom merges entries into the currently live registry without
// removing existing ones. Used to inject a request's custom formatters on
// top of the defaults-only baseline.
func (r *Registry) AddCustom(set Set) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, fn := range set {
		r.entries[name] = Entry{Name: name, Fn: fn}
	}
}

// Reset restores the registry to exactly the baseline snapshot, discarding
// any custom formatters. Restoration works from the snapshot captured at
// MarkBaseline, never by filtering mutable flags.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make(map[string]Entry, len(r.baseline))
	for name, fn := range r.baseline {
		entries[name] = Entry{Name: name, Fn: fn, IsDefault: true}
	}
	r.entries = entries
}

// Live returns a copy of the current name-to-function view, suitable for
// handing to the engine as an explicit per-call argument.
func (r *Registry) Live() Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(Set, len(r.entries))
	for name, entry := range r.entries {
		out[name] = entry.Fn
	}
	return out
}

// Lookup returns the named formatter from the live registry.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return entry.Fn, true
}

// Len reports the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
