// Package models defines the shared data types for swarm runs: tasks,
// plans, blackboard entries, roles, and results.
package models

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is being worked on by an agent.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusComplete indicates the task completed successfully.
	TaskStatusComplete TaskStatus = "complete"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusComplete, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusComplete || s == TaskStatusFailed
}

// Task represents one unit of work inside a swarm plan.
type Task struct {
	// ID is the unique identifier for this task within its plan.
	ID string `json:"id" yaml:"id"`
	// Description is the free-text goal for this unit of work.
	Description string `json:"description" yaml:"description"`
	// AssignedRole is the role identifier that should execute this task.
	// Empty means the generalist fallback role.
	AssignedRole string `json:"assigned_role,omitempty" yaml:"role,omitempty"`
	// Dependencies lists task IDs that must complete before this task.
	// IDs that do not resolve within the plan are treated as permanently
	// unsatisfied, not as a configuration error.
	Dependencies []string `json:"dependencies,omitempty" yaml:"depends_on,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status" yaml:"status,omitempty"`
	// Result holds the agent's output, set only on completion.
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
	// Error holds the failure reason, set only on failure.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Protocol selects the execution strategy for a plan.
type Protocol string

const (
	// ProtocolSequential executes tasks one at a time in topological order.
	ProtocolSequential Protocol = "sequential"
	// ProtocolParallel executes tasks level by level with per-level fan-out.
	ProtocolParallel Protocol = "parallel"
	// ProtocolDebate runs a bounded propose/critique/refine/synthesize loop.
	ProtocolDebate Protocol = "debate"
	// ProtocolCustom is reserved for caller-supplied plans; it executes
	// with sequential ordering.
	ProtocolCustom Protocol = "custom"
)

// Valid returns true if the protocol is a known value.
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolSequential, ProtocolParallel, ProtocolDebate, ProtocolCustom:
		return true
	default:
		return false
	}
}

// SwarmPlan is a goal decomposed into tasks plus the protocol that drives
// them. Protocols may append tasks at runtime (debate does), but the tasks
// present at plan-build time are never removed.
type SwarmPlan struct {
	// Goal is the high-level objective this plan satisfies.
	Goal string `json:"goal" yaml:"goal"`
	// Protocol selects the execution strategy.
	Protocol Protocol `json:"protocol" yaml:"protocol"`
	// Tasks is the ordered task collection.
	Tasks []*Task `json:"tasks" yaml:"tasks"`
}

// Task returns the task with the given ID, or nil if not present.
func (p *SwarmPlan) Task(id string) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
