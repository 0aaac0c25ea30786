// Package agent defines the boundary to the external agent collaborator:
// a callable unit that, given a prompt, returns a text result and
// optionally a private reasoning trace. The orchestrator never sees the
// agent's internal tool calls or conversation turns.
package agent

import (
	"context"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// Reply is the outcome of one agent invocation.
type Reply struct {
	// Text is the agent's result.
	Text string
	// Thinking is the optional private reasoning trace, empty when the
	// agent produced none.
	Thinking string
}

// Agent is a role-configured collaborator. Converse may block on a
// network round trip; callers bound it with the context.
type Agent interface {
	// Converse sends one prompt and returns the agent's reply.
	Converse(ctx context.Context, prompt string) (Reply, error)
}

// Factory creates an Agent for a role. Implementations decide how the
// role's prompt template, temperature, and output budget map onto the
// underlying model.
type Factory interface {
	// NewAgent creates an agent acting in the given role.
	NewAgent(role *models.Role) Agent
}

// The func adapter lets tests supply factories inline.
type FactoryFunc func(role *models.Role) Agent

// NewAgent implements Factory.
func (f FactoryFunc) NewAgent(role *models.Role) Agent {
	return f(role)
}
