package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runParallel processes dependency levels in order, fanning out every
// task in a level concurrently and joining on the whole level before
// advancing. The budget is checked only between levels, so a single
// wide level can overshoot it. Tasks stranded by the level grouping
// (behind a cycle or an unknown dependency) are never scheduled.
func (r *run) runParallel(ctx context.Context) {
	for _, level := range r.graph.Levels() {
		if r.o.interrupted() {
			r.budget.exhaust()
		}
		if r.budget.exhausted() {
			r.o.debug.Log("[parallel] budget exhausted, remaining levels skipped")
			r.o.emit(Event{Type: EventBudgetExhausted, Turns: r.budget.used()})
			break
		}

		var g errgroup.Group
		if r.o.maxConcurrency > 0 {
			g.SetLimit(r.o.maxConcurrency)
		}
		for _, id := range level {
			task := r.graph.Task(id)
			if task.Status.Terminal() {
				continue
			}
			g.Go(func() error {
				r.executeTask(ctx, task)
				return nil
			})
		}
		// executeTask never returns an error; the join is what matters.
		_ = g.Wait()
	}
}
