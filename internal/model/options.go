package model

import "slices"

// SSHOptions configures the transport the engine uses to reach nodes. The zero
// value, with empty lists, is the documented default.
type SSHOptions struct {
	Agent             bool
	Identities        []string
	Port              int
	User              string
	KnownHosts        string
	Ciphers           []string
	MACs              []string
	HostKeyAlgorithms []string
	Compress          bool
	NoX11             bool
	Reconnect         bool
	LogFile           string
}

// DefaultSSHOptions returns the options used when ssh_options is absent.
func DefaultSSHOptions() SSHOptions {
	return SSHOptions{
		Identities:        []string{},
		Ciphers:           []string{},
		MACs:              []string{},
		HostKeyAlgorithms: []string{},
	}
}

// Clone returns a copy that shares no slices with o.
func (o SSHOptions) Clone() SSHOptions {
	o.Identities = slices.Clone(o.Identities)
	o.Ciphers = slices.Clone(o.Ciphers)
	o.MACs = slices.Clone(o.MACs)
	o.HostKeyAlgorithms = slices.Clone(o.HostKeyAlgorithms)
	return o
}

// NotificationOptions configures crash report emails.
type NotificationOptions struct {
	SMTPHost         string
	NotificationAddr string
}

// Store backends for run state.
const (
	StoreShelve = "shelve"
	StoreYAML   = "yaml"
	StoreSQL    = "sql"
)

// StatePersistence configures where the engine keeps run history.
type StatePersistence struct {
	Store             string
	Name              string
	ConnectionDetails string
	BufferSize        int
}

func DefaultStatePersistence() StatePersistence {
	return StatePersistence{
		Store:      StoreShelve,
		Name:       "jobconf_state",
		BufferSize: 1,
	}
}
