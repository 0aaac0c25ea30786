package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/reedwhitmont/swarm/internal/agent"
	"github.com/reedwhitmont/swarm/pkg/models"
)

// gaugeFactory wraps the scripted factory and tracks peak concurrent
// Converse calls.
type gaugeFactory struct {
	inner   *agent.ScriptedFactory
	mu      sync.Mutex
	current int
	peak    int
	started chan struct{}
	release chan struct{}
}

func newGaugeFactory(blockFirst int) *gaugeFactory {
	return &gaugeFactory{
		inner:   agent.NewScriptedFactory(),
		started: make(chan struct{}, blockFirst),
		release: make(chan struct{}),
	}
}

func (g *gaugeFactory) NewAgent(role *models.Role) agent.Agent {
	return &gaugeAgent{g: g, inner: g.inner.NewAgent(role)}
}

type gaugeAgent struct {
	g     *gaugeFactory
	inner agent.Agent
}

func (a *gaugeAgent) Converse(ctx context.Context, prompt string) (agent.Reply, error) {
	g := a.g
	g.mu.Lock()
	g.current++
	if g.current > g.peak {
		g.peak = g.current
	}
	g.mu.Unlock()

	select {
	case g.started <- struct{}{}:
		<-g.release
	default:
	}

	defer func() {
		g.mu.Lock()
		g.current--
		g.mu.Unlock()
	}()
	return a.inner.Converse(ctx, prompt)
}

func TestParallelDiamond(t *testing.T) {
	f := agent.NewScriptedFactory()
	o := newTestOrchestrator(t, f, Config{})

	plan := &models.SwarmPlan{
		Goal:     "goal",
		Protocol: models.ProtocolParallel,
		Tasks: []*models.Task{
			pendingTask("a", "researcher", "root"),
			pendingTask("b", "coder", "left", "a"),
			pendingTask("c", "coder", "right", "a"),
			pendingTask("d", "synthesizer", "join", "b", "c"),
		},
	}

	result := o.ExecutePlan(context.Background(), plan)

	if !result.Success {
		t.Fatalf("expected success: %+v", result.Tasks)
	}
	if result.TotalTurns != 4 {
		t.Errorf("expected 4 turns, got %d", result.TotalTurns)
	}
	// The join task is last in list order, so it supplies the output.
	if plan.Task("d").Result != result.FinalOutput {
		t.Errorf("expected join task output, got %q", result.FinalOutput)
	}
}

func TestParallelLevelFansOut(t *testing.T) {
	g := newGaugeFactory(2)
	o := newTestOrchestrator(t, agent.NewScriptedFactory(), Config{})
	o.factory = g

	plan := &models.SwarmPlan{
		Goal:     "goal",
		Protocol: models.ProtocolParallel,
		Tasks: []*models.Task{
			pendingTask("a", "coder", "one"),
			pendingTask("b", "coder", "two"),
		},
	}

	done := make(chan *models.SwarmResult, 1)
	go func() { done <- o.ExecutePlan(context.Background(), plan) }()

	// Both level members must be in flight at once.
	<-g.started
	<-g.started
	close(g.release)
	<-done

	g.mu.Lock()
	peak := g.peak
	g.mu.Unlock()
	if peak < 2 {
		t.Errorf("expected concurrent execution within a level, peak=%d", peak)
	}
}

func TestParallelConcurrencyCap(t *testing.T) {
	g := newGaugeFactory(0)
	o := newTestOrchestrator(t, agent.NewScriptedFactory(), Config{MaxConcurrency: 1})
	o.factory = g

	plan := &models.SwarmPlan{
		Goal:     "goal",
		Protocol: models.ProtocolParallel,
		Tasks: []*models.Task{
			pendingTask("a", "coder", "one"),
			pendingTask("b", "coder", "two"),
			pendingTask("c", "coder", "three"),
		},
	}

	result := o.ExecutePlan(context.Background(), plan)

	if !result.Success {
		t.Fatalf("expected success: %+v", result.Tasks)
	}
	g.mu.Lock()
	peak := g.peak
	g.mu.Unlock()
	if peak > 1 {
		t.Errorf("cap of 1 exceeded, peak=%d", peak)
	}
}

func TestParallelStrandedTasksNeverScheduled(t *testing.T) {
	f := agent.NewScriptedFactory()
	o := newTestOrchestrator(t, f, Config{})

	plan := &models.SwarmPlan{
		Goal:     "goal",
		Protocol: models.ProtocolParallel,
		Tasks: []*models.Task{
			pendingTask("a", "coder", "fine"),
			pendingTask("b", "coder", "stuck", "ghost"),
			pendingTask("c", "coder", "behind stuck", "b"),
		},
	}

	result := o.ExecutePlan(context.Background(), plan)

	if result.Success {
		t.Error("expected failure with stranded tasks")
	}
	if plan.Task("a").Status != models.TaskStatusComplete {
		t.Errorf("a: expected complete, got %s", plan.Task("a").Status)
	}
	for _, id := range []string{"b", "c"} {
		if plan.Task(id).Status != models.TaskStatusPending {
			t.Errorf("%s: stranded task should stay pending, got %s", id, plan.Task(id).Status)
		}
	}
}

func TestParallelFailedDependencyStillRunsDependent(t *testing.T) {
	f := agent.NewScriptedFactory()
	f.QueueError("researcher", errors.New("model down"))
	o := newTestOrchestrator(t, f, Config{})

	plan := &models.SwarmPlan{
		Goal:     "goal",
		Protocol: models.ProtocolParallel,
		Tasks: []*models.Task{
			pendingTask("a", "researcher", "fails"),
			pendingTask("b", "coder", "runs anyway", "a"),
		},
	}

	result := o.ExecutePlan(context.Background(), plan)

	// Level grouping only looks at scheduling, not success: b's level is
	// reached once a has been scheduled, so b executes even though a
	// failed.
	if plan.Task("b").Status != models.TaskStatusComplete {
		t.Errorf("b: expected complete, got %s (%s)", plan.Task("b").Status, plan.Task("b").Error)
	}
	if result.Success {
		t.Error("run with a failed task cannot succeed")
	}
}

func TestParallelBudgetBetweenLevels(t *testing.T) {
	f := agent.NewScriptedFactory()
	o := newTestOrchestrator(t, f, Config{MaxTurns: 2})

	plan := &models.SwarmPlan{
		Goal:     "goal",
		Protocol: models.ProtocolParallel,
		Tasks: []*models.Task{
			pendingTask("a", "coder", "one"),
			pendingTask("b", "coder", "two"),
			pendingTask("c", "coder", "next level", "a", "b"),
		},
	}

	result := o.ExecutePlan(context.Background(), plan)

	if result.TotalTurns != 2 {
		t.Errorf("expected 2 turns, got %d", result.TotalTurns)
	}
	if plan.Task("c").Status != models.TaskStatusPending {
		t.Errorf("c: expected pending after budget stop, got %s", plan.Task("c").Status)
	}
}
