package orchestrator

import (
	"context"
	"fmt"

	"github.com/reedwhitmont/swarm/internal/roles"
	"github.com/reedwhitmont/swarm/pkg/models"
)

// maxDebateRounds bounds the critique/refine loop.
const maxDebateRounds = 3

// runDebate drives the bounded actor-critic loop: an initial proposal,
// up to maxDebateRounds critique/refine exchanges, and always one final
// synthesis. Synthetic tasks created along the way are appended to the
// plan so the result's task snapshot reflects the full negotiation
// history.
func (r *run) runDebate(ctx context.Context) {
	r.debate = true

	proposal := r.proposalTask()
	r.executeTask(ctx, proposal)

	for round := 1; round <= maxDebateRounds; round++ {
		critique := r.appendTask(
			fmt.Sprintf("debate-critique-%d", round),
			roles.Critic,
			fmt.Sprintf("Round %d: critically review the current proposal and any refinements. "+
				"Open with 'VERDICT: approved' or 'VERDICT: revise'.", round),
		)
		r.executeTask(ctx, critique)

		if critique.Status == models.TaskStatusComplete && critiqueApproved(critique.Result) {
			r.o.debug.Log("[debate] round %d approved", round)
			break
		}

		refine := r.appendTask(
			fmt.Sprintf("debate-refine-%d", round),
			roles.Coder,
			fmt.Sprintf("Round %d: revise the proposal to address the critique.", round),
		)
		r.executeTask(ctx, refine)
	}

	synthesis := r.appendTask(
		"debate-synthesis",
		roles.Synthesizer,
		"Synthesize the proposal, critiques, and refinements into the final answer.",
	)
	r.executeTask(ctx, synthesis)
	r.finalTask = synthesis
}

// proposalTask picks the initial proposal: the first task assigned to
// the coder role, else the first task in the plan, else a synthetic
// proposal built from the goal.
func (r *run) proposalTask() *models.Task {
	for _, task := range r.plan.Tasks {
		if task.AssignedRole == roles.Coder {
			return task
		}
	}
	if len(r.plan.Tasks) > 0 {
		return r.plan.Tasks[0]
	}
	return r.appendTask(
		"debate-proposal",
		roles.Coder,
		fmt.Sprintf("Propose a solution for: %s", r.plan.Goal),
	)
}

// appendTask creates a synthetic task and appends it to the plan's task
// list.
func (r *run) appendTask(id, roleID, description string) *models.Task {
	task := &models.Task{
		ID:           id,
		Description:  description,
		AssignedRole: roleID,
		Status:       models.TaskStatusPending,
	}
	r.plan.Tasks = append(r.plan.Tasks, task)
	return task
}
