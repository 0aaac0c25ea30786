package models

import "time"

// Timing records the wall-clock span of a run.
type Timing struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// EndedAt is when the run finished.
	EndedAt time.Time `json:"ended_at"`
	// Duration is EndedAt minus StartedAt.
	Duration time.Duration `json:"duration"`
}

// NoOutputPlaceholder is the FinalOutput value when no task produced a
// result.
const NoOutputPlaceholder = "no output produced"

// SwarmResult is the outcome of one swarm run.
type SwarmResult struct {
	// Success is true only if every task reached complete. The debate
	// protocol sets it unconditionally once the loop finishes.
	Success bool `json:"success"`
	// Goal echoes the plan's goal.
	Goal string `json:"goal"`
	// FinalOutput is the protocol's designated final task result, or
	// NoOutputPlaceholder when nothing completed.
	FinalOutput string `json:"final_output"`
	// Blackboard is the full entry snapshot at the end of the run.
	Blackboard []*BlackboardEntry `json:"blackboard"`
	// Tasks is the full task snapshot, including any tasks a protocol
	// appended at runtime.
	Tasks []*Task `json:"tasks"`
	// TotalTurns counts agent invocations charged against the budget.
	TotalTurns int `json:"total_turns"`
	// Timing is set by Execute; ExecutePlan leaves it zero.
	Timing Timing `json:"timing"`
}
