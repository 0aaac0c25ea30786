package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/reedwhitmont/swarm/internal/blackboard"
	"github.com/reedwhitmont/swarm/pkg/models"
)

// executeTask resolves the task's role, invokes the agent collaborator
// with a prompt built from the goal, the task, and a bounded blackboard
// view, posts any contributed entries, and records the outcome on the
// task. Nothing raised by the collaborator escapes: failures are written
// into task.Error and the caller continues.
func (r *run) executeTask(ctx context.Context, task *models.Task) {
	o := r.o

	role, ok := o.registry.Resolve(task.AssignedRole)
	if !ok {
		task.Status = models.TaskStatusFailed
		task.Error = fmt.Sprintf("Unknown role: %s", task.AssignedRole)
		o.debug.Log("[task %s] %s", task.ID, task.Error)
		if o.hooks.OnAgentStart != nil {
			safeHook(func() { o.hooks.OnAgentStart(task.AssignedRole, task) })
		}
		if o.hooks.OnAgentComplete != nil {
			safeHook(func() { o.hooks.OnAgentComplete(task.AssignedRole, task, "") })
		}
		o.emit(Event{Type: EventTaskFailed, TaskID: task.ID, Role: task.AssignedRole, Message: task.Error})
		return
	}

	task.Status = models.TaskStatusRunning
	if o.hooks.OnAgentStart != nil {
		safeHook(func() { o.hooks.OnAgentStart(role.ID, task) })
	}
	o.emit(Event{Type: EventTaskStarted, TaskID: task.ID, Role: role.ID, Message: task.Description})

	prompt := r.buildPrompt(task)
	o.debug.Log("[task %s] role=%s prompt=%d bytes", task.ID, role.ID, len(prompt))

	callCtx := ctx
	if o.taskTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		defer cancel()
	}

	reply, err := o.factory.NewAgent(role).Converse(callCtx, prompt)
	if err != nil {
		task.Status = models.TaskStatusFailed
		task.Error = err.Error()
		o.debug.Log("[task %s] agent error: %v", task.ID, err)
		o.emit(Event{Type: EventTaskFailed, TaskID: task.ID, Role: role.ID, Err: err})
		return
	}

	// One successful collaborator return is one turn, regardless of how
	// many model calls the agent made internally.
	r.budget.consume()

	for _, contribution := range ParseContributions(reply.Text) {
		r.o.board.Post(models.BlackboardEntry{
			Author:  role.ID,
			Type:    contribution.Type,
			Content: contribution.Content,
			Tags:    contribution.Tags,
		})
	}

	if reply.Thinking != "" {
		if o.hooks.OnThinking != nil {
			safeHook(func() { o.hooks.OnThinking(role.ID, reply.Thinking) })
		}
		o.emit(Event{Type: EventThinking, TaskID: task.ID, Role: role.ID, Message: reply.Thinking})
	}

	task.Status = models.TaskStatusComplete
	task.Result = reply.Text
	if o.hooks.OnAgentComplete != nil {
		safeHook(func() { o.hooks.OnAgentComplete(role.ID, task, reply.Text) })
	}
	o.emit(Event{Type: EventTaskCompleted, TaskID: task.ID, Role: role.ID, Turns: r.budget.used()})
}

// buildPrompt constructs the context text handed to the agent: the
// plan's goal, the task description, and a bounded view of the
// blackboard when it has anything to show.
func (r *run) buildPrompt(task *models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Team goal: %s\n\n", r.plan.Goal)
	fmt.Fprintf(&b, "Your task: %s\n", task.Description)

	view := r.o.board.FormatForContext(blackboard.FormatOptions{MaxEntries: r.o.contextEntries})
	if view != blackboard.EmptyPlaceholder {
		b.WriteString("\n")
		b.WriteString(view)
	}

	b.WriteString("\nTo share findings with the team, wrap them in blackboard blocks:\n")
	b.WriteString("[blackboard:finding:tag1,tag2]\nyour content\n[/blackboard]\n")
	b.WriteString("Valid types: finding, artifact, question, decision, critique.\n")
	return b.String()
}

// failDependenciesNotMet marks the task failed with the fixed unmet
// dependency reason and notifies observers.
func (r *run) failDependenciesNotMet(task *models.Task) {
	task.Status = models.TaskStatusFailed
	task.Error = depsNotMetReason
	r.o.debug.Log("[task %s] %s", task.ID, depsNotMetReason)
	r.o.emit(Event{Type: EventTaskFailed, TaskID: task.ID, Role: task.AssignedRole, Message: depsNotMetReason})
}
