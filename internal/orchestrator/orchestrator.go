// Package orchestrator drives a team of role-specialized agents against
// a single goal. A goal is decomposed into a plan of dependency-ordered
// tasks; the orchestrator executes the plan under one of three protocols
// (sequential, parallel, debate), routes shared findings through the
// blackboard, and assembles the final result.
package orchestrator

import (
	"context"
	"time"

	"github.com/reedwhitmont/swarm/internal/agent"
	"github.com/reedwhitmont/swarm/internal/blackboard"
	"github.com/reedwhitmont/swarm/internal/graph"
	"github.com/reedwhitmont/swarm/internal/roles"
	"github.com/reedwhitmont/swarm/pkg/models"
)

// DefaultMaxTurns is the default global turn budget per run.
const DefaultMaxTurns = 20

// DefaultContextEntries is how many recent blackboard entries are shown
// to an agent when its task prompt is built.
const DefaultContextEntries = 10

// cycleErrorReason marks tasks rejected at plan admission because they
// participate in a dependency cycle.
var cycleErrorReason = graph.ErrCycleDetected.Error()

// depsNotMetReason marks tasks skipped because a dependency did not
// complete.
const depsNotMetReason = "Dependencies not met"

// Hooks are the optional lifecycle callbacks the orchestrator exposes.
// They are invoked synchronously and fire-and-forget; each invocation is
// isolated so a panicking callback cannot abort the run. Callers must
// not assume any particular goroutine.
type Hooks struct {
	// OnPlanReady fires once the plan is built, before execution.
	OnPlanReady func(plan *models.SwarmPlan)
	// OnAgentStart fires when a task begins execution.
	OnAgentStart func(roleID string, task *models.Task)
	// OnThinking forwards an agent's reasoning trace, when one exists.
	OnThinking func(roleID, text string)
	// OnAgentComplete fires when a task finishes execution.
	OnAgentComplete func(roleID string, task *models.Task, result string)
	// OnBlackboardUpdate fires for every posted entry.
	OnBlackboardUpdate func(entry *models.BlackboardEntry)
}

// Config contains construction options for the Orchestrator.
type Config struct {
	// Factory creates agents for roles. Required.
	Factory agent.Factory
	// Roles are custom role definitions merged over the built-ins.
	Roles []*models.Role
	// MaxTurns is the global turn budget per run. Zero means
	// DefaultMaxTurns; negative means unlimited.
	MaxTurns int
	// MaxConcurrency caps per-level fan-out in the parallel protocol.
	// Zero or negative means unlimited.
	MaxConcurrency int
	// ContextEntries is how many recent blackboard entries each task
	// prompt includes. Zero means DefaultContextEntries.
	ContextEntries int
	// TaskTimeout bounds a single agent invocation. Zero means no
	// timeout; a hung collaborator then blocks its task indefinitely.
	TaskTimeout time.Duration
	// Hooks are the optional lifecycle callbacks.
	Hooks Hooks
	// Emitter receives orchestrator events for UIs. Optional.
	Emitter *EventEmitter
	// Interrupt is polled between tasks and between levels; returning
	// true winds the run down early, like an exhausted budget. Optional.
	Interrupt func() bool
	// DebugLogPath enables file-based debug logging when non-empty.
	DebugLogPath string
}

// Orchestrator owns the blackboard, the role registry, and the turn
// accounting for runs it executes. All mutable state is per-instance;
// there are no package-level counters.
type Orchestrator struct {
	factory        agent.Factory
	registry       *roles.Registry
	board          *blackboard.Blackboard
	hooks          Hooks
	emitter        *EventEmitter
	interrupt      func() bool
	maxTurns       int
	maxConcurrency int
	contextEntries int
	taskTimeout    time.Duration
	debug          *DebugLogger
	unsubscribe    func()
}

// New creates an Orchestrator. The role set is frozen at this point;
// custom roles override built-ins with the same ID.
func New(cfg Config) *Orchestrator {
	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}
	contextEntries := cfg.ContextEntries
	if contextEntries == 0 {
		contextEntries = DefaultContextEntries
	}

	o := &Orchestrator{
		factory:        cfg.Factory,
		registry:       roles.NewRegistry(cfg.Roles),
		board:          blackboard.New(),
		hooks:          cfg.Hooks,
		emitter:        cfg.Emitter,
		interrupt:      cfg.Interrupt,
		maxTurns:       maxTurns,
		maxConcurrency: cfg.MaxConcurrency,
		contextEntries: contextEntries,
		taskTimeout:    cfg.TaskTimeout,
		debug:          newDebugLogger(cfg.DebugLogPath),
	}

	if o.hooks.OnBlackboardUpdate != nil || o.emitter != nil {
		o.unsubscribe = o.board.OnEntry(func(entry *models.BlackboardEntry) {
			if o.hooks.OnBlackboardUpdate != nil {
				safeHook(func() { o.hooks.OnBlackboardUpdate(entry) })
			}
			o.emit(Event{Type: EventEntryPosted, Role: entry.Author, Message: entry.Content, Entry: entry})
		})
	}

	return o
}

// Execute plans the goal and runs the resulting plan. Timing covers the
// planning call and the run.
func (o *Orchestrator) Execute(ctx context.Context, goal string) *models.SwarmResult {
	started := time.Now()

	plan := o.planGoal(ctx, goal)
	if o.hooks.OnPlanReady != nil {
		safeHook(func() { o.hooks.OnPlanReady(plan) })
	}
	o.emit(Event{Type: EventPlanReady, Message: string(plan.Protocol)})

	result := o.ExecutePlan(ctx, plan)

	ended := time.Now()
	result.Timing = models.Timing{
		StartedAt: started,
		EndedAt:   ended,
		Duration:  ended.Sub(started),
	}
	return result
}

// Plan builds a plan for the goal without executing it. The planner
// role drives decomposition; its fallbacks apply as in Execute.
func (o *Orchestrator) Plan(ctx context.Context, goal string) *models.SwarmPlan {
	return o.planGoal(ctx, goal)
}

// ExecutePlan runs a caller-supplied plan. The returned result carries
// no outer timing; Execute fills that in. Task execution failures never
// propagate: they surface as per-task Error strings and a false Success
// flag.
func (o *Orchestrator) ExecutePlan(ctx context.Context, plan *models.SwarmPlan) *models.SwarmResult {
	r := &run{
		o:      o,
		plan:   plan,
		graph:  graph.Build(plan.Tasks),
		budget: newTurnBudget(o.maxTurns),
	}

	for _, task := range plan.Tasks {
		if task.Status == "" {
			task.Status = models.TaskStatusPending
		}
	}

	// Cycle members fail at admission; the acyclic remainder still runs.
	for _, id := range r.graph.CycleMembers() {
		task := plan.Task(id)
		task.Status = models.TaskStatusFailed
		task.Error = cycleErrorReason
		o.debug.Log("[plan] task %s rejected: %s", id, cycleErrorReason)
		o.emit(Event{Type: EventTaskFailed, TaskID: id, Message: cycleErrorReason})
	}

	switch plan.Protocol {
	case models.ProtocolParallel:
		r.runParallel(ctx)
	case models.ProtocolDebate:
		r.runDebate(ctx)
	default:
		// Sequential, custom, and anything unrecognized execute in
		// topological order.
		r.runSequential(ctx)
	}

	result := r.assemble()
	o.emit(Event{Type: EventRunDone, Message: result.FinalOutput, Turns: result.TotalTurns})
	return result
}

// Blackboard returns a snapshot of the current blackboard entries.
func (o *Orchestrator) Blackboard() []*models.BlackboardEntry {
	return o.board.Export()
}

// Board exposes the live blackboard so hosts can post entries of their
// own (operator steering notes, seeded context) between runs.
func (o *Orchestrator) Board() *blackboard.Blackboard {
	return o.board
}

// ImportBlackboard seeds the workspace from a persisted snapshot.
func (o *Orchestrator) ImportBlackboard(entries []*models.BlackboardEntry) {
	o.board.Import(entries)
}

// Roles returns the registered role list.
func (o *Orchestrator) Roles() []*models.Role {
	return o.registry.All()
}

// Close releases the debug log and the blackboard subscription.
func (o *Orchestrator) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
	o.debug.Close()
}

// emit sends an event when an emitter is configured.
func (o *Orchestrator) emit(e Event) {
	if o.emitter == nil {
		return
	}
	e.Timestamp = time.Now()
	o.emitter.Emit(e)
}

// interrupted reports whether the host asked the run to wind down.
func (o *Orchestrator) interrupted() bool {
	return o.interrupt != nil && o.interrupt()
}

// safeHook isolates a callback so a panicking subscriber cannot abort
// the run.
func safeHook(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}

// run is the per-run execution state: one plan, one graph, one budget.
type run struct {
	o      *Orchestrator
	plan   *models.SwarmPlan
	graph  *graph.DependencyGraph
	budget *turnBudget

	// debate is set by the debate protocol: success becomes
	// unconditional and finalTask designates the synthesis output.
	debate    bool
	finalTask *models.Task
}

// assemble builds the SwarmResult from the run's final state.
func (r *run) assemble() *models.SwarmResult {
	result := &models.SwarmResult{
		Goal:       r.plan.Goal,
		Blackboard: r.o.board.Export(),
		Tasks:      r.plan.Tasks,
		TotalTurns: r.budget.used(),
	}

	if r.debate {
		// Debate reports success once the loop body ran to the end,
		// regardless of individual task outcomes.
		result.Success = true
		result.FinalOutput = models.NoOutputPlaceholder
		if r.finalTask != nil && r.finalTask.Status == models.TaskStatusComplete && r.finalTask.Result != "" {
			result.FinalOutput = r.finalTask.Result
		}
		return result
	}

	result.Success = true
	for _, task := range r.plan.Tasks {
		if task.Status != models.TaskStatusComplete {
			result.Success = false
			break
		}
	}

	// The designated final output is the last task in the original task
	// list order that completed, not necessarily the last one executed.
	result.FinalOutput = models.NoOutputPlaceholder
	for _, task := range r.plan.Tasks {
		if task.Status == models.TaskStatusComplete && task.Result != "" {
			result.FinalOutput = task.Result
		}
	}
	return result
}
