package render

import (
	"fmt"
	"strings"

	"github.com/sourceplane/jobconf/internal/graph"
	"github.com/sourceplane/jobconf/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════\n"

// ConfigViewer provides human-readable views of a compiled Config
type ConfigViewer struct {
	cfg *model.Config
}

// NewConfigViewer creates a new config viewer
func NewConfigViewer(cfg *model.Config) *ConfigViewer {
	return &ConfigViewer{cfg: cfg}
}

// ViewJobs returns a tree of every job with its actions in execution order
func (cv *ConfigViewer) ViewJobs() string {
	if cv.cfg.Jobs.Len() == 0 {
		return "No jobs in configuration"
	}

	var sb strings.Builder
	names := cv.cfg.Jobs.Names()
	for i, name := range names {
		job, _ := cv.cfg.Jobs.Get(name)
		isLastJob := i == len(names)-1

		jobPrefix := "├─ "
		connector := "│  "
		if isLastJob {
			jobPrefix = "└─ "
			connector = "   "
		}

		jobLine := fmt.Sprintf("%s%s [%s] on %s", jobPrefix, job.Name(), job.Schedule(), job.Node())
		if job.AllNodes() {
			jobLine += " (all nodes)"
		}
		sb.WriteString(jobLine + "\n")
		cv.writeActions(&sb, job, connector)
	}

	sb.WriteString(rule)
	sb.WriteString(fmt.Sprintf("Summary: %d jobs, %d services\n", cv.cfg.Jobs.Len(), cv.cfg.Services.Len()))
	return sb.String()
}

func (cv *ConfigViewer) writeActions(sb *strings.Builder, job model.Job, connector string) {
	g := graph.New(job)
	order, err := g.TopologicalSort()
	if err != nil {
		sb.WriteString(fmt.Sprintf("%s└─ (%v)\n", connector, err))
		return
	}
	for j, name := range order {
		prefix := connector + "├─ "
		if j == len(order)-1 {
			prefix = connector + "└─ "
		}

		a, ok := job.Actions().Get(name)
		if !ok {
			a, _ = job.CleanupAction()
		}
		line := prefix + a.Name()
		if a.IsCleanup() {
			line += " (cleanup)"
		}
		if deps := g.Requires(name); len(deps) > 0 {
			line += " ← " + strings.Join(deps, ", ")
		}
		if a.Node() != "" {
			line += " @" + a.Node()
		}
		sb.WriteString(line + "\n")
	}
}

// ViewJob shows a single job with every field and the full action commands
func (cv *ConfigViewer) ViewJob(name string) string {
	job, ok := cv.cfg.Jobs.Get(name)
	if !ok {
		return fmt.Sprintf("No job found: %s", name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s [%s]\n", job.Name(), job.Schedule()))
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("Node: %s\n", job.Node()))
	if members := cv.cfg.PoolMembers(job.Node()); len(members) > 1 {
		hosts := make([]string, 0, len(members))
		for _, m := range members {
			hosts = append(hosts, m.Name)
		}
		sb.WriteString(fmt.Sprintf("Members: %s\n", strings.Join(hosts, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Queueing: %t\n", job.Queueing()))
	sb.WriteString(fmt.Sprintf("Run limit: %d\n", job.RunLimit()))
	sb.WriteString(fmt.Sprintf("All nodes: %t\n", job.AllNodes()))

	g := graph.New(job)
	order, err := g.TopologicalSort()
	if err != nil {
		sb.WriteString(fmt.Sprintf("Actions: %v\n", err))
		return sb.String()
	}
	sb.WriteString("Actions:\n")
	for i, actionName := range order {
		prefix := "├─ "
		connector := "│  "
		if i == len(order)-1 {
			prefix = "└─ "
			connector = "   "
		}
		a, ok := job.Actions().Get(actionName)
		if !ok {
			a, _ = job.CleanupAction()
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", prefix, a.Name()))
		sb.WriteString(fmt.Sprintf("%s  Run: %s\n", connector, a.Command()))
		if deps := g.Requires(actionName); len(deps) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Requires: %s\n", connector, strings.Join(deps, ", ")))
		}
		if a.Node() != "" {
			sb.WriteString(fmt.Sprintf("%s  Node: %s\n", connector, a.Node()))
		}
	}
	return sb.String()
}

// ViewNodes shows node pools with their members, then the standalone nodes
func (cv *ConfigViewer) ViewNodes() string {
	if cv.cfg.Nodes.Len() == 0 {
		return "No nodes in configuration"
	}

	var sb strings.Builder
	sb.WriteString("Node Pools\n")
	sb.WriteString(rule)
	if cv.cfg.NodePools.Len() == 0 {
		sb.WriteString("(none)\n")
	}
	pools := cv.cfg.NodePools.Names()
	for i, name := range pools {
		pool, _ := cv.cfg.NodePools.Get(name)
		prefix := "├─ "
		connector := "│  "
		if i == len(pools)-1 {
			prefix = "└─ "
			connector = "   "
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", prefix, name))
		members := pool.Nodes()
		for j, m := range members {
			memberPrefix := connector + "├─ "
			if j == len(members)-1 {
				memberPrefix = connector + "└─ "
			}
			node, _ := cv.cfg.Nodes.Get(m)
			sb.WriteString(fmt.Sprintf("%s%s (%s)\n", memberPrefix, node.Name, node.Hostname))
		}
	}

	sb.WriteString("\nNodes\n")
	sb.WriteString(rule)
	nodes := cv.cfg.Nodes.Names()
	for i, name := range nodes {
		node, _ := cv.cfg.Nodes.Get(name)
		prefix := "├─ "
		if i == len(nodes)-1 {
			prefix = "└─ "
		}
		sb.WriteString(fmt.Sprintf("%s%s (%s)\n", prefix, node.Name, node.Hostname))
	}
	return sb.String()
}

// ViewServices lists services with their instance count and target
func (cv *ConfigViewer) ViewServices() string {
	if cv.cfg.Services.Len() == 0 {
		return "No services in configuration"
	}

	var sb strings.Builder
	names := cv.cfg.Services.Names()
	for i, name := range names {
		svc, _ := cv.cfg.Services.Get(name)
		prefix := "├─ "
		connector := "│  "
		if i == len(names)-1 {
			prefix = "└─ "
			connector = "   "
		}
		sb.WriteString(fmt.Sprintf("%s%s x%d on %s\n", prefix, svc.Name, svc.Count, svc.Node))
		sb.WriteString(fmt.Sprintf("%s  Run: %s\n", connector, svc.Command))
		sb.WriteString(fmt.Sprintf("%s  PID file: %s\n", connector, svc.PIDFile))
		sb.WriteString(fmt.Sprintf("%s  Monitor: every %ds\n", connector, svc.MonitorInterval))
		if svc.RestartInterval > 0 {
			sb.WriteString(fmt.Sprintf("%s  Restart: after %ds\n", connector, svc.RestartInterval))
		}
	}
	return sb.String()
}
