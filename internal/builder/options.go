package builder

import (
	"maps"
	"slices"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/sourceplane/jobconf/internal/model"
)

var sshKeys = []string{
	"agent", "identities", "port", "user", "known_hosts", "ciphers", "macs",
	"host_key_algorithms", "compress", "nox11", "reconnect", "logfile",
}

type sshFields struct {
	Port int `yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// BuildSSHOptions returns the ssh option record, defaulting every option that
// v leaves out.
func BuildSSHOptions(path string, v any) (model.SSHOptions, error) {
	opts := model.DefaultSSHOptions()
	if v == nil {
		return opts, nil
	}
	f, err := asFields(v, path)
	if err != nil {
		return opts, err
	}
	if err := f.unknown(sshKeys); err != nil {
		return opts, err
	}

	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"agent", &opts.Agent},
		{"compress", &opts.Compress},
		{"nox11", &opts.NoX11},
		{"reconnect", &opts.Reconnect},
	} {
		if *b.dst, err = f.boolean(b.key, false); err != nil {
			return opts, err
		}
	}
	for _, s := range []struct {
		key string
		dst *string
	}{
		{"user", &opts.User},
		{"known_hosts", &opts.KnownHosts},
		{"logfile", &opts.LogFile},
	} {
		if *s.dst, err = f.str(s.key); err != nil {
			return opts, err
		}
	}
	for _, l := range []struct {
		key string
		dst *[]string
	}{
		{"identities", &opts.Identities},
		{"ciphers", &opts.Ciphers},
		{"macs", &opts.MACs},
		{"host_key_algorithms", &opts.HostKeyAlgorithms},
	} {
		items, err := f.strings(l.key)
		if err != nil {
			return opts, err
		}
		if items != nil {
			*l.dst = items
		}
	}

	var sf sshFields
	if sf.Port, err = f.integer("port", 0); err != nil {
		return opts, err
	}
	if err := checkStruct(path, sf); err != nil {
		return opts, err
	}
	opts.Port = sf.Port
	return opts, nil
}

type notificationFields struct {
	SMTPHost         string `yaml:"smtp_host" validate:"required"`
	NotificationAddr string `yaml:"notification_addr" validate:"required,email"`
}

// BuildNotificationOptions returns nil when v is absent.
func BuildNotificationOptions(path string, v any) (*model.NotificationOptions, error) {
	if v == nil {
		return nil, nil
	}
	f, err := asFields(v, path)
	if err != nil {
		return nil, err
	}
	if err := f.unknown([]string{"smtp_host", "notification_addr"}); err != nil {
		return nil, err
	}
	var nf notificationFields
	if nf.SMTPHost, err = f.str("smtp_host"); err != nil {
		return nil, err
	}
	if nf.NotificationAddr, err = f.str("notification_addr"); err != nil {
		return nil, err
	}
	if err := checkStruct(path, nf); err != nil {
		return nil, err
	}
	return &model.NotificationOptions{SMTPHost: nf.SMTPHost, NotificationAddr: nf.NotificationAddr}, nil
}

type stateFields struct {
	Store      string `yaml:"store" validate:"oneof=shelve yaml sql"`
	Name       string `yaml:"name" validate:"required"`
	BufferSize int    `yaml:"buffer_size" validate:"min=1"`
}

// BuildStatePersistence returns the state persistence record with defaults
// for every key v leaves out.
func BuildStatePersistence(path string, v any) (model.StatePersistence, error) {
	state := model.DefaultStatePersistence()
	if v == nil {
		return state, nil
	}
	f, err := asFields(v, path)
	if err != nil {
		return state, err
	}
	if err := f.unknown([]string{"store", "name", "connection_details", "buffer_size"}); err != nil {
		return state, err
	}

	sf := stateFields{Store: state.Store, Name: state.Name}
	for _, s := range []struct {
		key string
		dst *string
	}{
		{"store", &sf.Store},
		{"name", &sf.Name},
	} {
		if f.get(s.key) == nil {
			continue
		}
		if *s.dst, err = f.str(s.key); err != nil {
			return state, err
		}
	}
	if sf.BufferSize, err = f.integer("buffer_size", state.BufferSize); err != nil {
		return state, err
	}
	if err := checkStruct(path, sf); err != nil {
		return state, err
	}
	details, err := f.str("connection_details")
	if err != nil {
		return state, err
	}
	return model.StatePersistence{
		Store:             sf.Store,
		Name:              sf.Name,
		ConnectionDetails: details,
		BufferSize:        sf.BufferSize,
	}, nil
}

// BuildCommandContext returns the command_context mapping with every value
// rendered as a string.
func BuildCommandContext(path string, v any) (map[string]string, error) {
	out := make(map[string]string)
	if v == nil {
		return out, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, model.Errorf(path, "must be a mapping, got %s", kindOf(v))
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		switch x := m[k].(type) {
		case string:
			out[k] = x
		case int:
			out[k] = strconv.Itoa(x)
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			return nil, model.Errorf(model.JoinPath(path, k), "must be a string, got %s", kindOf(x))
		}
	}
	return out, nil
}

// checkTimeZone accepts an empty zone or any IANA zone name.
func checkTimeZone(path, tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return model.Errorf(path, "unknown time zone %q", tz)
	}
	return nil
}
