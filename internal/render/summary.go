package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sourceplane/jobconf/internal/graph"
	"github.com/sourceplane/jobconf/internal/model"
	"gopkg.in/yaml.v3"
)

// Summary is a serializable view of a compiled Config.
type Summary struct {
	WorkingDir          string               `json:"working_dir" yaml:"working_dir"`
	OutputStreamDir     string               `json:"output_stream_dir,omitempty" yaml:"output_stream_dir,omitempty"`
	SyslogAddress       string               `json:"syslog_address,omitempty" yaml:"syslog_address,omitempty"`
	TimeZone            string               `json:"time_zone,omitempty" yaml:"time_zone,omitempty"`
	SSHOptions          SSHSummary           `json:"ssh_options" yaml:"ssh_options"`
	NotificationOptions *NotificationSummary `json:"notification_options,omitempty" yaml:"notification_options,omitempty"`
	StatePersistence    StateSummary         `json:"state_persistence" yaml:"state_persistence"`
	CommandContext      map[string]string    `json:"command_context" yaml:"command_context"`
	Nodes               []model.Node         `json:"nodes" yaml:"nodes"`
	NodePools           []PoolSummary        `json:"node_pools" yaml:"node_pools"`
	Jobs                []JobSummary         `json:"jobs" yaml:"jobs"`
	Services            []ServiceSummary     `json:"services" yaml:"services"`
}

type SSHSummary struct {
	Agent             bool     `json:"agent" yaml:"agent"`
	Identities        []string `json:"identities" yaml:"identities"`
	Port              int      `json:"port,omitempty" yaml:"port,omitempty"`
	User              string   `json:"user,omitempty" yaml:"user,omitempty"`
	KnownHosts        string   `json:"known_hosts,omitempty" yaml:"known_hosts,omitempty"`
	Ciphers           []string `json:"ciphers" yaml:"ciphers"`
	MACs              []string `json:"macs" yaml:"macs"`
	HostKeyAlgorithms []string `json:"host_key_algorithms" yaml:"host_key_algorithms"`
	Compress          bool     `json:"compress" yaml:"compress"`
	NoX11             bool     `json:"nox11" yaml:"nox11"`
	Reconnect         bool     `json:"reconnect" yaml:"reconnect"`
	LogFile           string   `json:"logfile,omitempty" yaml:"logfile,omitempty"`
}

type NotificationSummary struct {
	SMTPHost         string `json:"smtp_host" yaml:"smtp_host"`
	NotificationAddr string `json:"notification_addr" yaml:"notification_addr"`
}

type StateSummary struct {
	Store             string `json:"store" yaml:"store"`
	Name              string `json:"name" yaml:"name"`
	ConnectionDetails string `json:"connection_details,omitempty" yaml:"connection_details,omitempty"`
	BufferSize        int    `json:"buffer_size" yaml:"buffer_size"`
}

type PoolSummary struct {
	Name  string   `json:"name" yaml:"name"`
	Nodes []string `json:"nodes" yaml:"nodes"`
}

// JobSummary lists actions in execution order, cleanup last.
type JobSummary struct {
	Name         string          `json:"name" yaml:"name"`
	Node         string          `json:"node" yaml:"node"`
	Schedule     string          `json:"schedule" yaml:"schedule"`
	ScheduleKind string          `json:"schedule_kind" yaml:"schedule_kind"`
	Queueing     bool            `json:"queueing" yaml:"queueing"`
	RunLimit     int             `json:"run_limit" yaml:"run_limit"`
	AllNodes     bool            `json:"all_nodes" yaml:"all_nodes"`
	Actions      []ActionSummary `json:"actions" yaml:"actions"`
}

type ActionSummary struct {
	Name     string   `json:"name" yaml:"name"`
	Command  string   `json:"command" yaml:"command"`
	Node     string   `json:"node,omitempty" yaml:"node,omitempty"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	Cleanup  bool     `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
}

type ServiceSummary struct {
	Name            string `json:"name" yaml:"name"`
	Node            string `json:"node" yaml:"node"`
	Command         string `json:"command" yaml:"command"`
	Count           int    `json:"count" yaml:"count"`
	PIDFile         string `json:"pid_file" yaml:"pid_file"`
	MonitorInterval int    `json:"monitor_interval" yaml:"monitor_interval"`
	RestartInterval int    `json:"restart_interval,omitempty" yaml:"restart_interval,omitempty"`
}

// Renderer turns a compiled Config into serializable output
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Summarize builds the summary of cfg. Every list is sorted by name.
func (r *Renderer) Summarize(cfg *model.Config) (*Summary, error) {
	s := &Summary{
		WorkingDir:      cfg.WorkingDir,
		OutputStreamDir: cfg.OutputStreamDir,
		SyslogAddress:   cfg.SyslogAddress,
		TimeZone:        cfg.TimeZone,
		SSHOptions: SSHSummary{
			Agent:             cfg.SSHOptions.Agent,
			Identities:        nonNil(cfg.SSHOptions.Identities),
			Port:              cfg.SSHOptions.Port,
			User:              cfg.SSHOptions.User,
			KnownHosts:        cfg.SSHOptions.KnownHosts,
			Ciphers:           nonNil(cfg.SSHOptions.Ciphers),
			MACs:              nonNil(cfg.SSHOptions.MACs),
			HostKeyAlgorithms: nonNil(cfg.SSHOptions.HostKeyAlgorithms),
			Compress:          cfg.SSHOptions.Compress,
			NoX11:             cfg.SSHOptions.NoX11,
			Reconnect:         cfg.SSHOptions.Reconnect,
			LogFile:           cfg.SSHOptions.LogFile,
		},
		StatePersistence: StateSummary{
			Store:             cfg.StatePersistence.Store,
			Name:              cfg.StatePersistence.Name,
			ConnectionDetails: cfg.StatePersistence.ConnectionDetails,
			BufferSize:        cfg.StatePersistence.BufferSize,
		},
		CommandContext: cfg.CommandContext.Clone(),
		Nodes:          make([]model.Node, 0, cfg.Nodes.Len()),
		NodePools:      make([]PoolSummary, 0, cfg.NodePools.Len()),
		Jobs:           make([]JobSummary, 0, cfg.Jobs.Len()),
		Services:       make([]ServiceSummary, 0, cfg.Services.Len()),
	}
	if n := cfg.NotificationOptions; n != nil {
		s.NotificationOptions = &NotificationSummary{SMTPHost: n.SMTPHost, NotificationAddr: n.NotificationAddr}
	}

	for _, node := range cfg.Nodes.All() {
		s.Nodes = append(s.Nodes, node)
	}
	for name, pool := range cfg.NodePools.All() {
		s.NodePools = append(s.NodePools, PoolSummary{Name: name, Nodes: pool.Nodes()})
	}
	for _, job := range cfg.Jobs.All() {
		js, err := r.summarizeJob(job)
		if err != nil {
			return nil, err
		}
		s.Jobs = append(s.Jobs, js)
	}
	for _, svc := range cfg.Services.All() {
		s.Services = append(s.Services, ServiceSummary{
			Name:            svc.Name,
			Node:            svc.Node,
			Command:         svc.Command,
			Count:           svc.Count,
			PIDFile:         svc.PIDFile,
			MonitorInterval: svc.MonitorInterval,
			RestartInterval: svc.RestartInterval,
		})
	}
	return s, nil
}

func (r *Renderer) summarizeJob(job model.Job) (JobSummary, error) {
	order, err := graph.New(job).TopologicalSort()
	if err != nil {
		return JobSummary{}, fmt.Errorf("failed to order actions of job %s: %w", job.Name(), err)
	}
	js := JobSummary{
		Name:         job.Name(),
		Node:         job.Node(),
		Schedule:     job.Schedule().String(),
		ScheduleKind: string(job.Schedule().Kind()),
		Queueing:     job.Queueing(),
		RunLimit:     job.RunLimit(),
		AllNodes:     job.AllNodes(),
		Actions:      make([]ActionSummary, 0, len(order)),
	}
	for _, name := range order {
		a, ok := job.Actions().Get(name)
		if !ok {
			a, _ = job.CleanupAction()
		}
		js.Actions = append(js.Actions, ActionSummary{
			Name:     a.Name(),
			Command:  a.Command(),
			Node:     a.Node(),
			Requires: a.Requires(),
			Cleanup:  a.IsCleanup(),
		})
	}
	return js, nil
}

// RenderJSON renders a summary as indented JSON
func (r *Renderer) RenderJSON(s *Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// RenderYAML renders a summary as YAML
func (r *Renderer) RenderYAML(s *Summary) ([]byte, error) {
	return yaml.Marshal(s)
}

// Encode writes s to w in format ("json" or "yaml").
func (r *Renderer) Encode(w io.Writer, s *Summary, format string) error {
	var data []byte
	var err error
	switch format {
	case "json", "":
		data, err = r.RenderJSON(s)
	case "yaml", "yml":
		data, err = r.RenderYAML(s)
	default:
		return fmt.Errorf("unsupported output format %q (expected json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

// WriteSummary writes s to path. The format follows the file extension,
// defaulting to JSON.
func (r *Renderer) WriteSummary(s *Summary, path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	format := "json"
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write summary to %s: %w", path, err)
	}
	if err := r.Encode(f, s, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
