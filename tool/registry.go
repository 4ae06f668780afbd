package tool

import (
	"strings"
	"sync"
)

// Registry holds the globally initialized tool set. Agents are narrowed to a
// subset at creation time via substring matching; the shared tool node
// invokes against the full registry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds a tool. Re-registering a name replaces the tool in place.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// All returns every registered tool in registration order.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// MatchToolkit returns tools whose name contains the toolkit substring,
// case-insensitive, in registration order.
func (r *Registry) MatchToolkit(toolkit string) []Tool {
	needle := strings.ToLower(toolkit)
	var out []Tool
	for _, t := range r.All() {
		if strings.Contains(strings.ToLower(t.Name()), needle) {
			out = append(out, t)
		}
	}
	return out
}

// MatchTool returns tools whose name contains both the toolkit and the
// specific tool substring, case-insensitive.
func (r *Registry) MatchTool(toolkit, name string) []Tool {
	tk := strings.ToLower(toolkit)
	tn := strings.ToLower(name)
	var out []Tool
	for _, t := range r.All() {
		lower := strings.ToLower(t.Name())
		if strings.Contains(lower, tk) && strings.Contains(lower, tn) {
			out = append(out, t)
		}
	}
	return out
}
