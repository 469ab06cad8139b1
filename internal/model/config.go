// Package model holds the validated, immutable configuration consumed by the
// execution engine.
package model

// Config is the root aggregate produced by one compilation. It is never
// modified after assembly; a reload builds a new Config.
type Config struct {
	WorkingDir      string
	OutputStreamDir string
	SyslogAddress   string
	TimeZone        string

	SSHOptions          SSHOptions
	NotificationOptions *NotificationOptions
	StatePersistence    StatePersistence

	CommandContext Map[string]
	Nodes          Map[Node]
	NodePools      Map[NodePool]
	Jobs           Map[Job]
	Services       Map[Service]
}

// Target reports whether name is a declared node or node pool.
func (c *Config) Target(name string) bool {
	return c.Nodes.Has(name) || c.NodePools.Has(name)
}

// PoolMembers returns the nodes a job or service targeting name runs on: the
// node itself, or every member of the pool.
func (c *Config) PoolMembers(name string) []Node {
	if n, ok := c.Nodes.Get(name); ok {
		return []Node{n}
	}
	pool, ok := c.NodePools.Get(name)
	if !ok {
		return nil
	}
	members := make([]Node, 0, len(pool.nodes))
	for _, m := range pool.nodes {
		if n, ok := c.Nodes.Get(m); ok {
			members = append(members, n)
		}
	}
	return members
}
