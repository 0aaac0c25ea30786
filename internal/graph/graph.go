// Package graph provides dependency ordering over a plan's tasks:
// topological sort for sequential execution and dependency-level grouping
// for parallel execution.
package graph

import (
	"errors"
	"sort"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the task graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// DependencyGraph is a directed graph of task dependencies. Edges point
// from a task to the tasks it is blocked by.
//
// Dependency IDs that do not resolve to a task in the graph are kept as
// edges to missing nodes: they never become satisfied, so tasks behind
// them stall out of the level schedule instead of failing the build.
type DependencyGraph struct {
	// nodes maps task ID to the task itself.
	nodes map[string]*models.Task
	// edges maps task ID to IDs of tasks it depends on.
	edges map[string][]string
	// order preserves the insertion order of task IDs so that sort and
	// level output is deterministic.
	order []string
}

// Build constructs a dependency graph from a task slice. Unknown
// dependency IDs are not an error; they are recorded as permanently
// unsatisfied edges.
func Build(tasks []*models.Task) *DependencyGraph {
	g := &DependencyGraph{
		nodes: make(map[string]*models.Task, len(tasks)),
		edges: make(map[string][]string, len(tasks)),
	}
	for _, task := range tasks {
		g.nodes[task.ID] = task
		g.edges[task.ID] = append([]string(nil), task.Dependencies...)
		g.order = append(g.order, task.ID)
	}
	return g
}

// Task returns the task for a given ID, or nil if not found.
func (g *DependencyGraph) Task(id string) *models.Task {
	return g.nodes[id]
}

// Size returns the number of tasks in the graph.
func (g *DependencyGraph) Size() int {
	return len(g.nodes)
}

// TopologicalSort returns task IDs with every resolvable dependency
// emitted before its dependents. The visited set guards against infinite
// recursion on a cycle; cycle participants are still emitted, in whatever
// order the traversal reaches them. Callers that need cycles rejected
// should check HasCycle first.
func (g *DependencyGraph) TopologicalSort() []string {
	visited := make(map[string]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, depID := range g.edges[id] {
			if _, ok := g.nodes[depID]; ok {
				visit(depID)
			}
		}
		result = append(result, id)
	}

	for _, id := range g.order {
		visit(id)
	}
	return result
}

// Levels groups tasks into dependency levels: each level contains every
// not-yet-scheduled task whose dependencies have all been scheduled in
// earlier levels. Grouping stops when a pass schedules nothing, so tasks
// behind a cycle or an unknown dependency are absent from the returned
// levels entirely.
func (g *DependencyGraph) Levels() [][]string {
	scheduled := make(map[string]bool, len(g.nodes))
	var levels [][]string

	for len(scheduled) < len(g.nodes) {
		var level []string
		for _, id := range g.order {
			if scheduled[id] {
				continue
			}
			ready := true
			for _, depID := range g.edges[id] {
				if _, ok := g.nodes[depID]; !ok {
					ready = false
					break
				}
				if !scheduled[depID] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			// Stalled: remaining tasks are cyclic or depend on
			// unknown IDs.
			break
		}
		for _, id := range level {
			scheduled[id] = true
		}
		levels = append(levels, level)
	}
	return levels
}

// HasCycle returns true if the graph contains a circular dependency.
// Uses depth-first search with coloring to detect back edges. Edges to
// unknown tasks are not cycles.
func (g *DependencyGraph) HasCycle() bool {
	return len(g.CycleMembers()) > 0
}

// CycleMembers returns the IDs of every task that participates in a
// dependency cycle, sorted for determinism. Tasks that merely depend on
// a cycle are not included.
func (g *DependencyGraph) CycleMembers() []string {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(g.nodes))
	inCycle := make(map[string]bool)

	var stack []string
	var visit func(id string)
	visit = func(id string) {
		colors[id] = 1
		stack = append(stack, id)

		for _, depID := range g.edges[id] {
			if _, ok := g.nodes[depID]; !ok {
				continue
			}
			switch colors[depID] {
			case 1:
				// Back edge: everything on the stack from depID
				// down is part of the cycle.
				for i := len(stack) - 1; i >= 0; i-- {
					inCycle[stack[i]] = true
					if stack[i] == depID {
						break
					}
				}
			case 0:
				visit(depID)
			}
		}

		colors[id] = 2
		stack = stack[:len(stack)-1]
	}

	for _, id := range g.order {
		if colors[id] == 0 {
			visit(id)
		}
	}

	members := make([]string, 0, len(inCycle))
	for id := range inCycle {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// Dependents returns the IDs of tasks that depend on the given task,
// in insertion order.
func (g *DependencyGraph) Dependents(taskID string) []string {
	var dependents []string
	for _, id := range g.order {
		for _, depID := range g.edges[id] {
			if depID == taskID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents
}
