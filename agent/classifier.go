package agent

import (
	"sort"
	"strings"

	"github.com/ArcadeAI/agentgraph/config"
)

// routingKeyword marks an instruction text as routing-capable. An agent is a
// supervisor when its instructions contain the keyword and mention at least
// one other configured agent id.
const routingKeyword = "route"

// Supervisors inspects every agent's instruction text and returns the set of
// agents that act as routers. Classification is purely textual: lower-cased
// instructions must contain the routing keyword and the id of at least one
// other configured agent as a substring.
func Supervisors(cfg *config.Config) map[string]bool {
	supervisors := map[string]bool{}
	ids := cfg.AgentIDs()
	for id, ac := range cfg.Agents {
		instructions := strings.ToLower(ac.Instructions)
		if !strings.Contains(instructions, routingKeyword) {
			continue
		}
		for _, other := range ids {
			if other == id {
				continue
			}
			if strings.Contains(instructions, strings.ToLower(other)) {
				supervisors[id] = true
				break
			}
		}
	}
	return supervisors
}

// FindOwner returns the supervisor managing agentID: the first supervisor
// (ids sorted for determinism) whose instruction text contains agentID as a
// substring, falling back to the configured top-level supervisor.
func FindOwner(agentID string, supervisors map[string]bool, cfg *config.Config) string {
	ids := make([]string, 0, len(supervisors))
	for id := range supervisors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	needle := strings.ToLower(agentID)
	for _, id := range ids {
		if strings.Contains(strings.ToLower(cfg.Agents[id].Instructions), needle) {
			return id
		}
	}
	return cfg.Routing.Supervisor
}
