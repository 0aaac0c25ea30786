package orchestrator

import (
	"context"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// runSequential processes tasks one at a time in topological order. A
// task whose dependencies did not all complete is failed with the fixed
// reason and the run continues; exhausting the turn budget stops the
// remaining tasks immediately.
func (r *run) runSequential(ctx context.Context) {
	for _, id := range r.graph.TopologicalSort() {
		task := r.graph.Task(id)
		if task.Status.Terminal() {
			// Rejected at admission (cycle member) or already decided.
			continue
		}

		if r.o.interrupted() {
			r.budget.exhaust()
		}
		if r.budget.exhausted() {
			r.o.debug.Log("[sequential] budget exhausted, %s and later tasks skipped", id)
			r.o.emit(Event{Type: EventBudgetExhausted, TaskID: id, Turns: r.budget.used()})
			break
		}

		if !r.dependenciesComplete(task) {
			r.failDependenciesNotMet(task)
			continue
		}

		r.executeTask(ctx, task)
	}
}

// dependenciesComplete reports whether every dependency of the task
// reached complete. Dependency IDs that resolve to no task never count
// as satisfied.
func (r *run) dependenciesComplete(task *models.Task) bool {
	for _, depID := range task.Dependencies {
		dep := r.graph.Task(depID)
		if dep == nil || dep.Status != models.TaskStatusComplete {
			return false
		}
	}
	return true
}
