package model

import (
	"slices"
	"strings"
)

// Node is a single execution target.
type Node struct {
	Name     string `json:"name" yaml:"name"`
	Hostname string `json:"hostname" yaml:"hostname"`
}

// NodePool is a named group of nodes. Members are node names.
type NodePool struct {
	name  string
	nodes []string
}

func NewNodePool(name string, nodes []string) NodePool {
	return NodePool{name: name, nodes: slices.Clone(nodes)}
}

func (p NodePool) Name() string { return p.name }

// Nodes returns the member node names in declaration order.
func (p NodePool) Nodes() []string {
	return slices.Clone(p.nodes)
}

// PoolName derives the name of a pool that does not declare one: the member
// node names, sorted and joined with an underscore.
func PoolName(members []string) string {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	return strings.Join(sorted, "_")
}
