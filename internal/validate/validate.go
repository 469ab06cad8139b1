// Package validate checks the references between built entities: node and
// pool targets, requires between sibling actions, and the namespaces that
// only make sense once every section is built.
package validate

import (
	"maps"
	"slices"

	"github.com/sourceplane/jobconf/internal/builder"
	"github.com/sourceplane/jobconf/internal/graph"
	"github.com/sourceplane/jobconf/internal/model"
)

// Validate returns the first broken reference or invariant in s.
func Validate(s *builder.Sections) error {
	v := &validator{s: s, owners: actionOwners(s)}
	if err := v.namespaces(); err != nil {
		return err
	}
	for _, name := range s.JobOrder {
		if err := v.job(s.Jobs[name]); err != nil {
			return err
		}
	}
	for _, name := range s.ServiceOrder {
		svc := s.Services[name]
		if err := v.target(model.JoinPath("services", svc.Name, "node"), svc.Node); err != nil {
			return err
		}
	}
	return nil
}

type validator struct {
	s *builder.Sections
	// owners maps an action name to the jobs declaring it.
	owners map[string][]string
}

func actionOwners(s *builder.Sections) map[string][]string {
	owners := make(map[string][]string)
	for _, jobName := range s.JobOrder {
		for _, a := range s.Jobs[jobName].ActionNames() {
			owners[a] = append(owners[a], jobName)
		}
	}
	return owners
}

// namespaces checks that nodes and pools do not share names and that every
// pool member is a node.
func (v *validator) namespaces() error {
	for _, name := range slices.Sorted(maps.Keys(v.s.NodePools)) {
		path := model.JoinPath("node_pools", name)
		if _, ok := v.s.Nodes[name]; ok {
			return model.Errorf(path, "node pool name %q collides with a node", name)
		}
		for _, member := range v.s.NodePools[name].Nodes() {
			if _, ok := v.s.Nodes[member]; !ok {
				return model.Errorf(model.JoinPath(path, "nodes"), "unknown node %q", member)
			}
		}
	}
	return nil
}

func (v *validator) target(path, name string) error {
	if _, ok := v.s.Nodes[name]; ok {
		return nil
	}
	if _, ok := v.s.NodePools[name]; ok {
		return nil
	}
	return model.Errorf(path, "unknown node or node pool %q", name)
}

func (v *validator) job(job model.Job) error {
	path := model.JoinPath("jobs", job.Name())
	if err := v.target(model.JoinPath(path, "node"), job.Node()); err != nil {
		return err
	}

	actions := job.Actions()
	for _, name := range job.ActionNames() {
		a, _ := actions.Get(name)
		ap := model.JoinPath(path, "actions", name)
		if a.IsCleanup() {
			return model.Errorf(ap, "action name %q is reserved for the cleanup action", name)
		}
		if a.Node() != "" {
			if err := v.target(model.JoinPath(ap, "node"), a.Node()); err != nil {
				return err
			}
		}
		for _, req := range a.Requires() {
			if actions.Has(req) {
				continue
			}
			rp := model.JoinPath(ap, "requires")
			if other := otherOwner(v.owners[req], job.Name()); other != "" {
				return model.Errorf(rp, "action %q belongs to job %q; requires may only name actions of job %q", req, other, job.Name())
			}
			return model.Errorf(rp, "unknown action %q", req)
		}
	}

	if cleanup, ok := job.CleanupAction(); ok {
		cp := model.JoinPath(path, "cleanup_action")
		if len(cleanup.Requires()) > 0 {
			return model.Errorf(model.JoinPath(cp, "requires"), "cleanup action cannot declare requires")
		}
		if cleanup.Node() != "" {
			if err := v.target(model.JoinPath(cp, "node"), cleanup.Node()); err != nil {
				return err
			}
		}
	}

	if err := graph.New(job).DetectCycles(); err != nil {
		return model.WithinPath(model.JoinPath(path, "actions"), err)
	}
	return nil
}

func otherOwner(owners []string, job string) string {
	for _, o := range owners {
		if o != job {
			return o
		}
	}
	return ""
}
