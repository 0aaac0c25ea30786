package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reedwhitmont/swarm/internal/agent"
	"github.com/reedwhitmont/swarm/internal/config"
	"github.com/reedwhitmont/swarm/internal/orchestrator"
	"github.com/reedwhitmont/swarm/internal/state"
	"github.com/reedwhitmont/swarm/internal/steering"
	"github.com/reedwhitmont/swarm/internal/tui"
	"github.com/reedwhitmont/swarm/pkg/models"
)

var (
	runProtocol    string
	runMaxTurns    int
	runConcurrency int
	runTimeout     time.Duration
	runPlanFile    string
	runDryRun      bool
	runTUI         bool
	runSave        bool
	runSteerDir    string
)

var runCmd = &cobra.Command{
	Use:   "run <goal>",
	Short: "Run a goal with a swarm of agents",
	Long: `Run a goal using a team of role-specialized agents.

The goal is planned by the planner role (falling back to a fixed
research/implement/review/synthesize pipeline when planning fails) and
executed under the selected protocol:

  sequential  one task at a time in dependency order (default)
  parallel    dependency levels fan out concurrently
  debate      propose, critique, refine, synthesize

With --plan-file, the planning step is skipped and the YAML plan is
executed as supplied. With --dry-run, a deterministic scripted agent
stands in for the model so plans can be rehearsed offline.`,
	Args: cobra.MinimumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runPlanFile == "" && len(args) == 0 {
			return fmt.Errorf("a goal argument or --plan-file is required")
		}
		goal := strings.Join(args, " ")
		return runSwarm(cmd.Context(), goal)
	},
}

func init() {
	runCmd.Flags().StringVar(&runProtocol, "protocol", "", "Execution protocol: sequential, parallel, or debate (default from config)")
	runCmd.Flags().IntVar(&runMaxTurns, "max-turns", 0, "Global turn budget for the run (default from config)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Cap on parallel fan-out per level (0 = unlimited)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-task agent timeout (0 = none)")
	runCmd.Flags().StringVar(&runPlanFile, "plan-file", "", "Execute a YAML plan instead of planning the goal")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Use the scripted agent instead of calling a model")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show a live run view")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Persist the finished run to history")
	runCmd.Flags().StringVar(&runSteerDir, "steer-dir", "", "Watched directory for operator notes and stop signal")
}

func runSwarm(ctx context.Context, goal string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if runProtocol != "" && !models.Protocol(runProtocol).Valid() {
		return fmt.Errorf("unknown protocol %q (want sequential, parallel, or debate)", runProtocol)
	}

	// Flags override config.
	if runMaxTurns == 0 {
		runMaxTurns = cfg.Defaults.MaxTurns
	}
	if runConcurrency == 0 {
		runConcurrency = cfg.Defaults.MaxConcurrency
	}
	if runTimeout == 0 {
		runTimeout = cfg.Defaults.TaskTimeout
	}
	if runSteerDir == "" {
		runSteerDir = cfg.Steering.Dir
	}

	customRoles, err := cfg.LoadRoles()
	if err != nil {
		return err
	}

	factory, err := buildFactory(cfg, runDryRun)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	emitter := orchestrator.NewEventEmitter(256)

	orchCfg := orchestrator.Config{
		Factory:        factory,
		Roles:          customRoles,
		MaxTurns:       runMaxTurns,
		MaxConcurrency: runConcurrency,
		ContextEntries: cfg.Defaults.ContextEntries,
		TaskTimeout:    runTimeout,
		Emitter:        emitter,
	}

	var steer *steering.Watcher
	if runSteerDir != "" {
		steer, err = steering.New(runSteerDir)
		if err != nil {
			return fmt.Errorf("steering dir: %w", err)
		}
		defer steer.Close()
		orchCfg.Interrupt = steer.ShouldStop
	}

	orch := orchestrator.New(orchCfg)
	defer orch.Close()

	if steer != nil {
		stopNotes := forwardSteeringNotes(orch, steer)
		defer stopNotes()
	}

	var plan *models.SwarmPlan
	if runPlanFile != "" {
		plan, err = loadPlanFile(runPlanFile, runProtocol, cfg.Defaults.Protocol)
		if err != nil {
			return err
		}
	}

	execute := func() *models.SwarmResult {
		if plan == nil && runProtocol == "" {
			return orch.Execute(ctx, goal)
		}
		started := time.Now()
		if plan == nil {
			// The protocol flag overrides whatever the planner chose.
			plan = orch.Plan(ctx, goal)
			plan.Protocol = models.Protocol(runProtocol)
		}
		result := orch.ExecutePlan(ctx, plan)
		ended := time.Now()
		result.Timing = models.Timing{StartedAt: started, EndedAt: ended, Duration: ended.Sub(started)}
		return result
	}

	var result *models.SwarmResult
	if runTUI {
		result, err = executeWithTUI(goal, emitter, execute)
	} else {
		result = executeHeadless(emitter, execute)
	}
	if err != nil {
		return err
	}

	printResult(result)

	if runSave {
		protocol := models.ProtocolSequential
		if plan != nil {
			protocol = plan.Protocol
		} else if runProtocol != "" {
			protocol = models.Protocol(runProtocol)
		}
		if err := saveResult(protocol, result); err != nil {
			color.Yellow("warning: could not save run: %v", err)
		}
	}

	if !result.Success {
		// Returning the error lets the deferred cleanup run before the
		// process exits nonzero.
		return errRunFailed
	}
	return nil
}

var errRunFailed = fmt.Errorf("run finished with failures")

// buildFactory picks the agent backend: scripted for dry runs, the
// Anthropic API otherwise.
func buildFactory(cfg *config.Config, dryRun bool) (agent.Factory, error) {
	if dryRun {
		return agent.NewScriptedFactory(), nil
	}
	return agent.NewAnthropicFactory(agent.ClientConfig{
		Model:         cfg.Anthropic.Model,
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
}

// forwardSteeringNotes polls the steering directory and posts unseen
// operator notes to the blackboard as decisions, where the next task
// prompt picks them up. Returns a stop func.
func forwardSteeringNotes(orch *orchestrator.Orchestrator, steer *steering.Watcher) func() {
	quit := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				for _, note := range steer.DrainNotes() {
					orch.Board().Post(models.BlackboardEntry{
						Author:  "operator",
						Type:    models.EntryDecision,
						Content: note.Content,
						Tags:    []string{"steering"},
					})
				}
			}
		}
	}()
	return func() { close(quit) }
}

// loadPlanFile reads a YAML plan. The protocol is taken from the
// --protocol flag when given, then the plan file, then the configured
// default.
func loadPlanFile(path, protocolOverride, defaultProtocol string) (*models.SwarmPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var plan models.SwarmPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	if protocolOverride != "" {
		plan.Protocol = models.Protocol(protocolOverride)
	}
	if plan.Protocol == "" && models.Protocol(defaultProtocol).Valid() {
		plan.Protocol = models.Protocol(defaultProtocol)
	}
	if plan.Protocol == "" {
		plan.Protocol = models.ProtocolSequential
	}
	if len(plan.Tasks) == 0 {
		return nil, fmt.Errorf("plan file %s has no tasks", path)
	}
	return &plan, nil
}

// executeWithTUI runs the swarm behind a live terminal view. Events are
// forwarded into the bubbletea program; the program quits on DoneMsg.
func executeWithTUI(goal string, emitter *orchestrator.EventEmitter, execute func() *models.SwarmResult) (*models.SwarmResult, error) {
	p := tea.NewProgram(tui.NewModel(goal))

	go func() {
		for e := range emitter.Events() {
			p.Send(tui.EventMsg(e))
		}
	}()

	done := make(chan *models.SwarmResult, 1)
	go func() {
		done <- execute()
		p.Send(tui.DoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return <-done, nil
}

// executeHeadless prints events as colored lines while the run executes.
func executeHeadless(emitter *orchestrator.EventEmitter, execute func() *models.SwarmResult) *models.SwarmResult {
	done := make(chan *models.SwarmResult, 1)
	go func() { done <- execute() }()

	for {
		select {
		case e := <-emitter.Events():
			printEvent(e)
		case result := <-done:
			// Drain anything the run emitted after the last read.
			for {
				select {
				case e := <-emitter.Events():
					printEvent(e)
				default:
					return result
				}
			}
		}
	}
}

func printEvent(e orchestrator.Event) {
	switch e.Type {
	case orchestrator.EventPlanReady:
		color.Cyan("◆ plan ready (%s)", e.Message)
	case orchestrator.EventTaskStarted:
		color.Blue("▶ %s [%s] %s", e.TaskID, e.Role, firstLine(e.Message))
	case orchestrator.EventTaskCompleted:
		color.Green("✓ %s [%s] (turns: %d)", e.TaskID, e.Role, e.Turns)
	case orchestrator.EventTaskFailed:
		msg := e.Message
		if e.Err != nil {
			msg = e.Err.Error()
		}
		color.Red("✗ %s [%s] %s", e.TaskID, e.Role, firstLine(msg))
	case orchestrator.EventEntryPosted:
		if e.Entry != nil {
			color.Magenta("  ◦ [%s] %s: %s", e.Entry.Type, e.Entry.Author, firstLine(e.Entry.Content))
		}
	case orchestrator.EventBudgetExhausted:
		color.Yellow("! turn budget exhausted after %d turns", e.Turns)
	}
}

func printResult(result *models.SwarmResult) {
	fmt.Println()
	if result.Success {
		color.Green("run succeeded (%d turns, %s)", result.TotalTurns, result.Timing.Duration.Round(time.Millisecond))
	} else {
		color.Red("run finished with failures (%d turns)", result.TotalTurns)
	}
	fmt.Println()
	fmt.Println(result.FinalOutput)
}

func saveResult(protocol models.Protocol, result *models.SwarmResult) error {
	store, err := state.Open(state.DefaultPath())
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveResult(protocol, result)
	if err != nil {
		return err
	}
	color.Cyan("saved run %s", id)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 100 {
		s = s[:97] + "..."
	}
	return s
}
