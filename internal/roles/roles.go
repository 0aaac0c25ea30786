// Package roles defines the built-in role set and the registry that
// resolves a task's assigned role to a concrete role definition.
package roles

import (
	"sort"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// Built-in role identifiers.
const (
	Researcher  = "researcher"
	Coder       = "coder"
	Critic      = "critic"
	Synthesizer = "synthesizer"
	Planner     = "planner"

	// Fallback is the generalist role used when a task names no role.
	Fallback = Coder
)

// Default output budgets. Researcher and synthesizer carry larger
// budgets to match their verbose responsibilities.
const (
	defaultMaxTokens = 4096
	verboseMaxTokens = 8192
)

// Builtins returns fresh copies of the five built-in roles.
func Builtins() []*models.Role {
	return []*models.Role{
		{
			ID:          Researcher,
			Name:        "Researcher",
			Description: "Gathers background information and surfaces constraints before work begins.",
			SystemPrompt: "You are a research specialist on a collaborative team. " +
				"Investigate the task thoroughly, identify constraints, prior art, and risks, " +
				"and post concrete findings for your teammates.",
			Temperature: 0.7,
			MaxTokens:   verboseMaxTokens,
		},
		{
			ID:          Coder,
			Name:        "Coder",
			Description: "Produces working implementations from task descriptions and shared findings.",
			SystemPrompt: "You are an implementation specialist on a collaborative team. " +
				"Turn the task into concrete, working output. Prefer simple, direct solutions " +
				"and post any artifacts your teammates will need.",
			Temperature: 0.2,
			MaxTokens:   defaultMaxTokens,
		},
		{
			ID:          Critic,
			Name:        "Critic",
			Description: "Reviews prior work for defects, gaps, and unstated assumptions.",
			SystemPrompt: "You are a critical reviewer on a collaborative team. " +
				"Examine the work so far for correctness, completeness, and hidden assumptions. " +
				"Open your response with a line of the form 'VERDICT: approved' or " +
				"'VERDICT: revise', then explain. Say 'no major issues' only when you mean it.",
			Temperature: 0.3,
			MaxTokens:   defaultMaxTokens,
		},
		{
			ID:          Synthesizer,
			Name:        "Synthesizer",
			Description: "Assembles the team's work into a single coherent final answer.",
			SystemPrompt: "You are a synthesis specialist on a collaborative team. " +
				"Combine the task results and blackboard findings into one complete, " +
				"well-organized final answer. Resolve disagreements explicitly.",
			Temperature: 0.5,
			MaxTokens:   verboseMaxTokens,
		},
		{
			ID:          Planner,
			Name:        "Planner",
			Description: "Decomposes a goal into a dependency-ordered task plan.",
			SystemPrompt: "You are a planning specialist on a collaborative team. " +
				"Break the goal into a small set of focused tasks with explicit dependencies, " +
				"and assign each task to the best-suited role.",
			Temperature: 0.4,
			MaxTokens:   defaultMaxTokens,
		},
	}
}

// Registry is a frozen role lookup table. Custom roles supplied at
// construction override a built-in with the same ID; nothing can be
// added, removed, or modified afterwards.
type Registry struct {
	byID map[string]*models.Role
}

// NewRegistry builds a registry from the built-in roles merged with the
// given custom roles. Custom roles with empty IDs are ignored.
func NewRegistry(custom []*models.Role) *Registry {
	r := &Registry{byID: make(map[string]*models.Role)}
	for _, role := range Builtins() {
		r.byID[role.ID] = role
	}
	for _, role := range custom {
		if role == nil || role.ID == "" {
			continue
		}
		merged := *role
		if merged.MaxTokens == 0 {
			merged.MaxTokens = defaultMaxTokens
		}
		r.byID[merged.ID] = &merged
	}
	return r
}

// Resolve returns the role for the given ID. An empty ID resolves to the
// fallback role. The second return is false when the ID is unknown.
func (r *Registry) Resolve(id string) (*models.Role, bool) {
	if id == "" {
		id = Fallback
	}
	role, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	c := *role
	return &c, true
}

// Has returns true if a role with the given ID is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns copies of every registered role, sorted by ID.
func (r *Registry) All() []*models.Role {
	out := make([]*models.Role, 0, len(r.byID))
	for _, role := range r.byID {
		c := *role
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
