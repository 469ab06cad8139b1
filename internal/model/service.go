package model

// Service is a long-running process definition kept alive by the engine.
type Service struct {
	Name    string
	Node    string
	Command string
	// Count is the number of instances to run.
	Count int
	// PIDFile is a template with %(name)s and %(instance_number)s placeholders.
	PIDFile string
	// MonitorInterval is the number of seconds between health checks.
	MonitorInterval int
	// RestartInterval is the number of seconds to wait before restarting a
	// failed instance, zero when unset.
	RestartInterval int
}
