package models

// Role is a named behavioral configuration assigned to tasks and resolved
// to a concrete agent at execution time. Roles are immutable for the
// duration of a run.
type Role struct {
	// ID is the role identifier tasks reference.
	ID string `json:"id" yaml:"id"`
	// Name is the human-readable role name.
	Name string `json:"name" yaml:"name"`
	// Description summarizes the role's responsibility.
	Description string `json:"description" yaml:"description"`
	// SystemPrompt is the system prompt template for agents acting in
	// this role.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
	// Temperature is the default sampling temperature.
	Temperature float64 `json:"temperature" yaml:"temperature"`
	// MaxTokens is the default output-length budget. Verbose roles
	// (researcher, synthesizer) carry a larger budget.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
	// Model optionally overrides the configured default model.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// Tools names the dedicated tool set available to this role, if any.
	// Tools are opaque to the orchestrator; the agent invokes them
	// internally.
	Tools []string `json:"tools,omitempty" yaml:"tools,omitempty"`
}
