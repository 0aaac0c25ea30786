package orchestrator

import (
	"time"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventPlanReady indicates the plan is built and about to execute.
	EventPlanReady EventType = "plan_ready"
	// EventTaskStarted indicates a task has started execution.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventThinking carries an agent's reasoning trace.
	EventThinking EventType = "thinking"
	// EventEntryPosted indicates a blackboard entry was posted.
	EventEntryPosted EventType = "entry_posted"
	// EventBudgetExhausted indicates the turn budget stopped the run early.
	EventBudgetExhausted EventType = "budget_exhausted"
	// EventRunDone indicates the run is complete.
	EventRunDone EventType = "run_done"
)

// Event is emitted by the orchestrator as a run progresses. Events feed
// UIs and progress tracking; they are advisory and may be dropped under
// backpressure.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// Role is the role identifier of the related agent, if applicable.
	Role string
	// Message provides additional context about the event.
	Message string
	// Err contains error details for failure events.
	Err error
	// Entry is the posted entry for EventEntryPosted.
	Entry *models.BlackboardEntry
	// Turns is the turn count at emission time, for progress events.
	Turns int
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
