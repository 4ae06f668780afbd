package agent

// Registry holds bound agents by id, preserving configuration order. Pure
// lookup; no behavior of its own.
type Registry struct {
	agents map[string]*Agent
	order  []string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: map[string]*Agent{}}
}

// Add registers an agent. Re-adding an id replaces the agent in place.
func (r *Registry) Add(a *Agent) {
	if _, ok := r.agents[a.ID]; !ok {
		r.order = append(r.order, a.ID)
	}
	r.agents[a.ID] = a
}

// Get returns the agent with the given id.
func (r *Registry) Get(id string) (*Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// IDs returns agent ids in configuration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered agents.
func (r *Registry) Len() int { return len(r.agents) }

// HasAnyTools reports whether any registered agent carries tools.
func (r *Registry) HasAnyTools() bool {
	for _, id := range r.order {
		if r.agents[id].HasTools() {
			return true
		}
	}
	return false
}
