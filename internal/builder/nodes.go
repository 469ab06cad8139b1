package builder

import (
	"slices"

	"github.com/sourceplane/jobconf/internal/model"
)

var (
	nodeKeys = []string{"name", "hostname"}
	poolKeys = []string{"name", "nodes"}
)

type nodeFields struct {
	Name     string `yaml:"name" validate:"required"`
	Hostname string `yaml:"hostname" validate:"required,hostname_rfc1123|ip"`
}

// BuildNodes builds the node namespace from the nodes section.
func BuildNodes(path string, v any) (map[string]model.Node, error) {
	items, err := list(v, path)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]model.Node, len(items))
	for i, item := range items {
		p := entityPath(path, i, item)
		f, err := asFields(item, p)
		if err != nil {
			return nil, err
		}
		if err := f.unknown(nodeKeys); err != nil {
			return nil, err
		}
		var nf nodeFields
		if nf.Name, err = f.str("name"); err != nil {
			return nil, err
		}
		if nf.Hostname, err = f.str("hostname"); err != nil {
			return nil, err
		}
		if err := checkStruct(p, nf); err != nil {
			return nil, err
		}
		if _, dup := nodes[nf.Name]; dup {
			return nil, model.Errorf(p, "duplicate node name %q", nf.Name)
		}
		nodes[nf.Name] = model.Node{Name: nf.Name, Hostname: nf.Hostname}
	}
	return nodes, nil
}

// BuildNodePools builds the node pool namespace. Members must be declared in
// nodes. A pool without a name is named after its sorted members.
func BuildNodePools(path string, v any, nodes map[string]model.Node) (map[string]model.NodePool, error) {
	items, err := list(v, path)
	if err != nil {
		return nil, err
	}
	pools := make(map[string]model.NodePool, len(items))
	for i, item := range items {
		p := entityPath(path, i, item)
		f, err := asFields(item, p)
		if err != nil {
			return nil, err
		}
		if err := f.unknown(poolKeys); err != nil {
			return nil, err
		}
		name, err := f.str("name")
		if err != nil {
			return nil, err
		}
		members, err := f.strings("nodes")
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, model.Errorf(p, "node pool must list at least one node")
		}
		for j, m := range members {
			mp := model.JoinPath(f.at("nodes"), model.Index(j))
			if _, ok := nodes[m]; !ok {
				return nil, model.Errorf(mp, "unknown node %q", m)
			}
			if slices.Index(members, m) != j {
				return nil, model.Errorf(mp, "node %q listed twice", m)
			}
		}
		if name == "" {
			name = model.PoolName(members)
			p = model.JoinPath(path, name)
		}
		if _, ok := nodes[name]; ok {
			return nil, model.Errorf(p, "node pool name %q collides with a node", name)
		}
		if _, dup := pools[name]; dup {
			return nil, model.Errorf(p, "duplicate node pool name %q", name)
		}
		pools[name] = model.NewNodePool(name, members)
	}
	return pools, nil
}
