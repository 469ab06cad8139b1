package builder

import (
	"regexp"

	"github.com/sourceplane/jobconf/internal/model"
)

type serviceFields struct {
	Name            string `yaml:"name" validate:"required"`
	Node            string `yaml:"node" validate:"required"`
	Command         string `yaml:"command" validate:"required"`
	Count           *int   `yaml:"count" validate:"required,min=1"`
	PIDFile         string `yaml:"pid_file" validate:"required"`
	MonitorInterval *int   `yaml:"monitor_interval" validate:"required,min=1"`
	RestartInterval *int   `yaml:"restart_interval" validate:"omitempty,min=1"`
}

var placeholderRegex = regexp.MustCompile(`%\((\w*)\)`)

var pidFilePlaceholders = map[string]bool{
	"name":            true,
	"instance_number": true,
}

// BuildService builds one service document. Count, pid_file and
// monitor_interval have no defaults.
func BuildService(path string, v any) (model.Service, error) {
	f, err := asFields(v, path)
	if err != nil {
		return model.Service{}, err
	}
	if err := f.reject(jobOnlyKeys, "field %q belongs to jobs and is not allowed on a service"); err != nil {
		return model.Service{}, err
	}
	if err := f.unknown(serviceKeys); err != nil {
		return model.Service{}, err
	}

	var sf serviceFields
	for _, field := range []struct {
		key string
		dst *string
	}{
		{"name", &sf.Name},
		{"node", &sf.Node},
		{"command", &sf.Command},
		{"pid_file", &sf.PIDFile},
	} {
		if *field.dst, err = f.str(field.key); err != nil {
			return model.Service{}, err
		}
	}
	if sf.Count, err = f.optionalInt("count"); err != nil {
		return model.Service{}, err
	}
	if sf.MonitorInterval, err = f.optionalInt("monitor_interval"); err != nil {
		return model.Service{}, err
	}
	if sf.RestartInterval, err = f.optionalInt("restart_interval"); err != nil {
		return model.Service{}, err
	}
	if err := checkStruct(path, sf); err != nil {
		return model.Service{}, err
	}
	if err := checkPIDFile(f.at("pid_file"), sf.PIDFile); err != nil {
		return model.Service{}, err
	}

	svc := model.Service{
		Name:            sf.Name,
		Node:            sf.Node,
		Command:         sf.Command,
		Count:           *sf.Count,
		PIDFile:         sf.PIDFile,
		MonitorInterval: *sf.MonitorInterval,
	}
	if sf.RestartInterval != nil {
		svc.RestartInterval = *sf.RestartInterval
	}
	return svc, nil
}

func checkPIDFile(path, tmpl string) error {
	for _, m := range placeholderRegex.FindAllStringSubmatch(tmpl, -1) {
		if !pidFilePlaceholders[m[1]] {
			return model.Errorf(path, "unknown placeholder %q, expected %%(name)s or %%(instance_number)s", m[0])
		}
	}
	return nil
}
