package model

import "slices"

// CleanupActionName is the reserved name of a job's cleanup action. Normal
// actions may not use it.
const CleanupActionName = "cleanup_action"

const (
	DefaultQueueing = true
	DefaultRunLimit = 50
	DefaultAllNodes = false
)

// Action is a single command inside a job. Requires names sibling actions of
// the same job; Node optionally overrides the job's node or pool.
type Action struct {
	name     string
	command  string
	node     string
	requires []string
}

func NewAction(name, command, node string, requires []string) Action {
	return Action{name: name, command: command, node: node, requires: slices.Clone(requires)}
}

// NewCleanupAction builds the cleanup action of a job. It never has requires.
func NewCleanupAction(command, node string) Action {
	return Action{name: CleanupActionName, command: command, node: node}
}

func (a Action) Name() string    { return a.name }
func (a Action) Command() string { return a.command }

// Node is the node or pool override, empty when the job's target is used.
func (a Action) Node() string { return a.node }

func (a Action) Requires() []string {
	return slices.Clone(a.requires)
}

func (a Action) IsCleanup() bool {
	return a.name == CleanupActionName
}

// Job is a scheduled set of actions that runs on a node or node pool.
type Job struct {
	name     string
	node     string
	schedule Schedule
	actions  Map[Action]
	order    []string
	cleanup  *Action
	queueing bool
	runLimit int
	allNodes bool
}

// JobSpec carries the fields of a job to NewJob.
type JobSpec struct {
	Name     string
	Node     string
	Schedule Schedule
	// Actions in declaration order.
	Actions  []Action
	Cleanup  *Action
	Queueing bool
	RunLimit int
	AllNodes bool
}

func NewJob(spec JobSpec) Job {
	actions := make(map[string]Action, len(spec.Actions))
	order := make([]string, 0, len(spec.Actions))
	for _, a := range spec.Actions {
		actions[a.Name()] = a
		order = append(order, a.Name())
	}
	j := Job{
		name:     spec.Name,
		node:     spec.Node,
		schedule: spec.Schedule,
		actions:  NewMap(actions),
		order:    order,
		queueing: spec.Queueing,
		runLimit: spec.RunLimit,
		allNodes: spec.AllNodes,
	}
	if spec.Cleanup != nil {
		c := *spec.Cleanup
		j.cleanup = &c
	}
	return j
}

func (j Job) Name() string         { return j.name }
func (j Job) Node() string         { return j.node }
func (j Job) Schedule() Schedule   { return j.schedule }
func (j Job) Actions() Map[Action] { return j.actions }
func (j Job) Queueing() bool       { return j.queueing }
func (j Job) RunLimit() int        { return j.runLimit }
func (j Job) AllNodes() bool       { return j.allNodes }

// ActionNames returns the normal action names in declaration order.
func (j Job) ActionNames() []string {
	return slices.Clone(j.order)
}

// CleanupAction returns the job's cleanup action, if any.
func (j Job) CleanupAction() (Action, bool) {
	if j.cleanup == nil {
		return Action{}, false
	}
	return *j.cleanup, true
}
