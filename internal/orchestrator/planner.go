package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reedwhitmont/swarm/internal/roles"
	"github.com/reedwhitmont/swarm/pkg/models"
)

// plannedTask is the JSON structure the planner role is asked to emit
// for a single task.
type plannedTask struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Role         string   `json:"role"`
	Dependencies []string `json:"dependencies"`
}

// plannedPlan is the JSON structure the planner role is asked to emit.
type plannedPlan struct {
	Goal     string        `json:"goal"`
	Protocol string        `json:"protocol"`
	Tasks    []plannedTask `json:"tasks"`
}

const planInstruction = `Decompose the following goal into a plan.

Goal: %s

Respond with a single JSON object of the form:
{
  "goal": "...",
  "protocol": "sequential" | "parallel" | "debate",
  "tasks": [
    {"id": "t1", "description": "...", "role": "researcher|coder|critic|synthesizer", "dependencies": []}
  ]
}

Keep the plan small and focused. Every dependency must name another task id in the plan.`

// planGoal produces an executable plan for the goal. If a planner role
// is registered it is asked for a decomposition; a malformed or failed
// planning response is silently replaced by a deterministic fallback.
// Some plan is always produced.
func (o *Orchestrator) planGoal(ctx context.Context, goal string) *models.SwarmPlan {
	if !o.registry.Has(roles.Planner) {
		return singleTaskPlan(goal)
	}

	role, _ := o.registry.Resolve(roles.Planner)
	reply, err := o.factory.NewAgent(role).Converse(ctx, fmt.Sprintf(planInstruction, goal))
	if err != nil {
		o.debug.Log("[plan] planner call failed: %v", err)
		return fallbackPlan(goal)
	}

	plan, err := ParsePlanResponse(goal, reply.Text)
	if err != nil {
		o.debug.Log("[plan] planner response unusable: %v", err)
		return fallbackPlan(goal)
	}
	return plan
}

// ParsePlanResponse scans free text for the first well-formed plan block
// and converts it. An error means the caller should fall back; it never
// aborts a run.
func ParsePlanResponse(goal, response string) (*models.SwarmPlan, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response (%d chars)", len(response))
	}

	var parsed plannedPlan
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}

	protocol := models.Protocol(strings.ToLower(parsed.Protocol))
	if !protocol.Valid() {
		return nil, fmt.Errorf("missing or unknown protocol %q", parsed.Protocol)
	}
	if len(parsed.Tasks) == 0 {
		return nil, fmt.Errorf("plan has no tasks")
	}

	plan := &models.SwarmPlan{
		Goal:     goal,
		Protocol: protocol,
	}
	for i, pt := range parsed.Tasks {
		if pt.ID == "" {
			pt.ID = fmt.Sprintf("t%d", i+1)
		}
		if pt.Description == "" {
			return nil, fmt.Errorf("task %s has no description", pt.ID)
		}
		plan.Tasks = append(plan.Tasks, &models.Task{
			ID:           pt.ID,
			Description:  pt.Description,
			AssignedRole: pt.Role,
			Dependencies: pt.Dependencies,
			Status:       models.TaskStatusPending,
		})
	}
	return plan, nil
}

// fallbackPlan is the deterministic four-stage plan used when the
// planner's response cannot be used: research, implement, review,
// synthesize, each depending on its predecessor.
func fallbackPlan(goal string) *models.SwarmPlan {
	return &models.SwarmPlan{
		Goal:     goal,
		Protocol: models.ProtocolSequential,
		Tasks: []*models.Task{
			{
				ID:           "t1",
				Description:  fmt.Sprintf("Research the background and constraints for: %s", goal),
				AssignedRole: roles.Researcher,
				Status:       models.TaskStatusPending,
			},
			{
				ID:           "t2",
				Description:  fmt.Sprintf("Implement a solution for: %s", goal),
				AssignedRole: roles.Coder,
				Dependencies: []string{"t1"},
				Status:       models.TaskStatusPending,
			},
			{
				ID:           "t3",
				Description:  "Review the implementation for defects and gaps.",
				AssignedRole: roles.Critic,
				Dependencies: []string{"t2"},
				Status:       models.TaskStatusPending,
			},
			{
				ID:           "t4",
				Description:  "Synthesize the work so far into the final answer.",
				AssignedRole: roles.Synthesizer,
				Dependencies: []string{"t3"},
				Status:       models.TaskStatusPending,
			},
		},
	}
}

// singleTaskPlan is the minimal plan used when no planner role is
// registered at all.
func singleTaskPlan(goal string) *models.SwarmPlan {
	return &models.SwarmPlan{
		Goal:     goal,
		Protocol: models.ProtocolSequential,
		Tasks: []*models.Task{
			{
				ID:           "t1",
				Description:  goal,
				AssignedRole: roles.Coder,
				Status:       models.TaskStatusPending,
			},
		},
	}
}
