// Package builder turns the sections of a canonical document into entities.
// Builders check the fields of one entity at a time; references between
// entities are left to the validate package.
package builder

import (
	"github.com/sourceplane/jobconf/internal/model"
	"github.com/sourceplane/jobconf/internal/normalize"
)

// Sections holds every built namespace of one document, not yet
// cross-checked. The maps are owned by a single compilation.
type Sections struct {
	WorkingDir      string
	OutputStreamDir string
	SyslogAddress   string
	TimeZone        string

	SSHOptions          model.SSHOptions
	NotificationOptions *model.NotificationOptions
	StatePersistence    model.StatePersistence
	CommandContext      map[string]string

	Nodes     map[string]model.Node
	NodePools map[string]model.NodePool
	Jobs      map[string]model.Job
	Services  map[string]model.Service

	// Declaration order, so that checks over jobs and services report the
	// first offender in the document.
	JobOrder     []string
	ServiceOrder []string
}

var rootKeys = []string{
	"working_dir", "output_stream_dir", "syslog_address", "time_zone",
	"ssh_options", "notification_options", "state_persistence", "command_context",
	"nodes", "node_pools", "jobs", "services",
}

type rootFields struct {
	WorkingDir string `yaml:"working_dir" validate:"required"`
}

// Build builds every section of doc. It stops at the first error.
func Build(doc normalize.Document) (*Sections, error) {
	f := fields{m: doc}
	s := &Sections{}

	if err := f.unknown(rootKeys); err != nil {
		return nil, err
	}
	var err error
	var rf rootFields
	if rf.WorkingDir, err = f.str("working_dir"); err != nil {
		return nil, err
	}
	if err := checkStruct("", rf); err != nil {
		return nil, err
	}
	s.WorkingDir = rf.WorkingDir
	if s.OutputStreamDir, err = f.str("output_stream_dir"); err != nil {
		return nil, err
	}
	if s.SyslogAddress, err = f.str("syslog_address"); err != nil {
		return nil, err
	}
	if s.TimeZone, err = f.str("time_zone"); err != nil {
		return nil, err
	}
	if err := checkTimeZone("time_zone", s.TimeZone); err != nil {
		return nil, err
	}

	if s.SSHOptions, err = BuildSSHOptions("ssh_options", f.get("ssh_options")); err != nil {
		return nil, err
	}
	if s.NotificationOptions, err = BuildNotificationOptions("notification_options", f.get("notification_options")); err != nil {
		return nil, err
	}
	if s.StatePersistence, err = BuildStatePersistence("state_persistence", f.get("state_persistence")); err != nil {
		return nil, err
	}
	if s.CommandContext, err = BuildCommandContext("command_context", f.get("command_context")); err != nil {
		return nil, err
	}

	if s.Nodes, err = BuildNodes("nodes", f.get("nodes")); err != nil {
		return nil, err
	}
	if s.NodePools, err = BuildNodePools("node_pools", f.get("node_pools"), s.Nodes); err != nil {
		return nil, err
	}
	if s.Jobs, s.JobOrder, err = buildJobs("jobs", f.get("jobs")); err != nil {
		return nil, err
	}
	if s.Services, s.ServiceOrder, err = buildServices("services", f.get("services")); err != nil {
		return nil, err
	}
	return s, nil
}

func buildJobs(path string, v any) (map[string]model.Job, []string, error) {
	items, err := list(v, path)
	if err != nil {
		return nil, nil, err
	}
	jobs := make(map[string]model.Job, len(items))
	order := make([]string, 0, len(items))
	for i, item := range items {
		p := entityPath(path, i, item)
		job, err := BuildJob(p, item)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := jobs[job.Name()]; dup {
			return nil, nil, model.Errorf(p, "duplicate job name %q", job.Name())
		}
		jobs[job.Name()] = job
		order = append(order, job.Name())
	}
	return jobs, order, nil
}

func buildServices(path string, v any) (map[string]model.Service, []string, error) {
	items, err := list(v, path)
	if err != nil {
		return nil, nil, err
	}
	services := make(map[string]model.Service, len(items))
	order := make([]string, 0, len(items))
	for i, item := range items {
		p := entityPath(path, i, item)
		svc, err := BuildService(p, item)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := services[svc.Name]; dup {
			return nil, nil, model.Errorf(p, "duplicate service name %q", svc.Name)
		}
		services[svc.Name] = svc
		order = append(order, svc.Name)
	}
	return services, order, nil
}
