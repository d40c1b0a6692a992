// Package tool provides the process-wide tool registry and the
// capability-filtered views handed to individual sub-agents.
package tool

import (
	"sort"

	"github.com/jverdu/emissary/pkg/core"
)

// Registry maps tool names to implementations. It is read-only once
// constructed and safe to share across concurrent runs.
type Registry struct {
	tools map[string]core.Tool
}

// NewRegistry builds a registry from a caller-provided mapping. The map
// is copied; later mutations by the caller are not observed.
func NewRegistry(tools map[string]core.Tool) *Registry {
	r := &Registry{tools: make(map[string]core.Tool, len(tools))}
	for name, t := range tools {
		if t != nil {
			r.tools[name] = t
		}
	}
	return r
}

// FromTools builds a registry keyed by each tool's own name.
func FromTools(tools ...core.Tool) *Registry {
	m := make(map[string]core.Tool, len(tools))
	for _, t := range tools {
		if t != nil {
			m[t.Name()] = t
		}
	}
	return NewRegistry(m)
}

// Lookup returns the named tool.
func (r *Registry) Lookup(name string) (core.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Filter returns a new registry containing only the allowed names.
// Allowed names with no registered tool are skipped silently: a role
// simply receives no tool for that name.
func (r *Registry) Filter(allowed []string) *Registry {
	filtered := &Registry{tools: make(map[string]core.Tool, len(allowed))}
	for _, name := range allowed {
		if t, ok := r.tools[name]; ok {
			filtered.tools[name] = t
		}
	}
	return filtered
}
