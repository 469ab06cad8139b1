// Package graph models the requires edges between the actions of one job.
package graph

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sourceplane/jobconf/internal/model"
)

// ActionGraph is the dependency DAG of a job's normal actions. The cleanup
// action is not an edge target; it always runs after every other action.
type ActionGraph struct {
	job      string
	order    []string
	index    map[string]int
	requires map[string][]string
	cleanup  bool
}

// New builds the graph of job. Requires naming actions outside the job are
// ignored here; they are reported by validation.
func New(job model.Job) *ActionGraph {
	g := &ActionGraph{
		job:      job.Name(),
		order:    job.ActionNames(),
		index:    make(map[string]int),
		requires: make(map[string][]string),
	}
	for i, name := range g.order {
		g.index[name] = i
	}
	for name, a := range job.Actions().All() {
		for _, dep := range a.Requires() {
			if _, ok := g.index[dep]; ok {
				g.requires[name] = append(g.requires[name], dep)
			}
		}
	}
	_, g.cleanup = job.CleanupAction()
	return g
}

// DetectCycles reports the first cycle among the job's actions, visiting
// actions in declaration order. The error names every action on the cycle.
func (g *ActionGraph) DetectCycles() error {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)
		for _, dep := range g.requires[name] {
			if onStack[dep] {
				start := slices.Index(stack, dep)
				return append(slices.Clone(stack[start:]), dep)
			}
			if !visited[dep] {
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		onStack[name] = false
		return nil
	}

	for _, name := range g.order {
		if visited[name] {
			continue
		}
		if cycle := visit(name); cycle != nil {
			return model.Errorf(model.JoinPath(cycle[0], "requires"), "dependency cycle: %s", strings.Join(cycle, " -> "))
		}
	}
	return nil
}

// TopologicalSort returns the action names in an order where every action
// follows the actions it requires. Ties are broken by declaration order, so
// the result is stable. The cleanup action, if any, comes last.
func (g *ActionGraph) TopologicalSort() ([]string, error) {
	dependents := make(map[string][]string)
	inDegree := make(map[string]int, len(g.order))
	for _, name := range g.order {
		inDegree[name] = len(g.requires[name])
		for _, dep := range g.requires[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	byDeclaration := func(a, b string) int { return cmp.Compare(g.index[a], g.index[b]) }

	queue := make([]string, 0, len(g.order))
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	sorted := make([]string, 0, len(g.order)+1)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		slices.SortStableFunc(queue, byDeclaration)
	}

	if len(sorted) != len(g.order) {
		if err := g.DetectCycles(); err != nil {
			return nil, err
		}
		return nil, model.Errorf("", "actions of job %q cannot be ordered", g.job)
	}
	if g.cleanup {
		sorted = append(sorted, model.CleanupActionName)
	}
	return sorted, nil
}

// Requires returns the sibling actions name waits for.
func (g *ActionGraph) Requires(name string) []string {
	return slices.Clone(g.requires[name])
}

// Dependents returns the actions that require name, in declaration order.
func (g *ActionGraph) Dependents(name string) []string {
	var out []string
	for _, other := range g.order {
		if slices.Contains(g.requires[other], name) {
			out = append(out, other)
		}
	}
	return out
}

// Roots returns the actions with no requires, in declaration order. They are
// the actions a run starts with.
func (g *ActionGraph) Roots() []string {
	var out []string
	for _, name := range g.order {
		if len(g.requires[name]) == 0 {
			out = append(out, name)
		}
	}
	return out
}
