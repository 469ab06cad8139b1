package builder

import (
	"slices"

	"github.com/sourceplane/jobconf/internal/model"
	"github.com/sourceplane/jobconf/internal/schedule"
)

// Keys a job and a service share, and the keys only one of them may carry.
var (
	commonKeys      = []string{"name", "node"}
	jobOnlyKeys     = []string{"schedule", "actions", "cleanup_action", "queueing", "run_limit", "all_nodes"}
	serviceOnlyKeys = []string{"command", "count", "pid_file", "monitor_interval", "restart_interval"}

	jobKeys     = slices.Concat(commonKeys, jobOnlyKeys)
	serviceKeys = slices.Concat(commonKeys, serviceOnlyKeys)
)

type jobFields struct {
	Name     string `yaml:"name" validate:"required"`
	Node     string `yaml:"node" validate:"required"`
	Schedule string `yaml:"schedule" validate:"required"`
	RunLimit int    `yaml:"run_limit" validate:"min=1"`
}

// BuildJob builds one job document. Defaults are applied for queueing,
// run_limit and all_nodes.
func BuildJob(path string, v any) (model.Job, error) {
	f, err := asFields(v, path)
	if err != nil {
		return model.Job{}, err
	}
	if err := f.reject(serviceOnlyKeys, "field %q belongs to services and is not allowed on a job"); err != nil {
		return model.Job{}, err
	}
	if err := f.unknown(jobKeys); err != nil {
		return model.Job{}, err
	}

	var jf jobFields
	if jf.Name, err = f.str("name"); err != nil {
		return model.Job{}, err
	}
	if jf.Node, err = f.str("node"); err != nil {
		return model.Job{}, err
	}
	if jf.Schedule, err = f.str("schedule"); err != nil {
		return model.Job{}, err
	}
	if jf.RunLimit, err = f.integer("run_limit", model.DefaultRunLimit); err != nil {
		return model.Job{}, err
	}
	if err := checkStruct(path, jf); err != nil {
		return model.Job{}, err
	}
	queueing, err := f.boolean("queueing", model.DefaultQueueing)
	if err != nil {
		return model.Job{}, err
	}
	allNodes, err := f.boolean("all_nodes", model.DefaultAllNodes)
	if err != nil {
		return model.Job{}, err
	}

	sched, err := schedule.Parse(jf.Schedule)
	if err != nil {
		return model.Job{}, model.WithinPath(f.at("schedule"), err)
	}

	actions, err := BuildActions(f.at("actions"), f.get("actions"))
	if err != nil {
		return model.Job{}, err
	}

	var cleanup *model.Action
	if f.has("cleanup_action") {
		c, err := BuildCleanupAction(f.at("cleanup_action"), f.get("cleanup_action"))
		if err != nil {
			return model.Job{}, err
		}
		cleanup = &c
	}

	return model.NewJob(model.JobSpec{
		Name:     jf.Name,
		Node:     jf.Node,
		Schedule: sched,
		Actions:  actions,
		Cleanup:  cleanup,
		Queueing: queueing,
		RunLimit: jf.RunLimit,
		AllNodes: allNodes,
	}), nil
}
