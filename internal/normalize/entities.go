package normalize

import (
	"slices"

	"github.com/sourceplane/jobconf/internal/model"
	"gopkg.in/yaml.v3"
)

// role is the kind of entity an anchored mapping declares. Aliases in
// reference positions resolve to the name of the entity.
type role int

const (
	roleNone role = iota
	roleNode
	rolePool
	roleAction
)

func (r role) String() string {
	switch r {
	case roleNode:
		return "node"
	case rolePool:
		return "node pool"
	case roleAction:
		return "action"
	}
	return "entity"
}

func (r role) withArticle() string {
	if r == roleAction {
		return "an " + r.String()
	}
	return "a " + r.String()
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := deref(m.Content[i]); k != nil && k.Value == key {
			return true
		}
	}
	return false
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := deref(m.Content[i]); k != nil && k.Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// isInlinePool reports whether an entry of the legacy nodes list declares a
// pool rather than a node.
func isInlinePool(m *yaml.Node) bool {
	switch m.Tag {
	case "!NodePool":
		return true
	case "!Node":
		return false
	}
	return hasKey(m, "nodes") && !hasKey(m, "hostname")
}

func eachMapping(v *yaml.Node, fn func(*yaml.Node)) {
	s := deref(v)
	if s == nil || s.Kind != yaml.SequenceNode {
		return
	}
	for _, item := range s.Content {
		if m := deref(item); m != nil && m.Kind == yaml.MappingNode {
			fn(m)
		}
	}
}

// classify records the role of every entity mapping in a legacy document.
func (n *normalizer) classify(entries []entry) {
	for _, e := range entries {
		switch e.key {
		case "nodes":
			eachMapping(e.value, func(m *yaml.Node) {
				if isInlinePool(m) {
					n.roles[m] = rolePool
				} else {
					n.roles[m] = roleNode
				}
			})
		case "node_pools":
			eachMapping(e.value, func(m *yaml.Node) { n.roles[m] = rolePool })
		case "jobs":
			eachMapping(e.value, func(job *yaml.Node) {
				if actions := lookup(job, "actions"); actions != nil {
					eachMapping(actions, func(m *yaml.Node) { n.roles[m] = roleAction })
				}
			})
		}
	}
}

// nodes converts the nodes section. Legacy inline pools are returned
// separately so the caller can move them under node_pools.
func (n *normalizer) nodes(v *yaml.Node, path string) (any, []any, error) {
	var pools []any
	out, err := follow(n, v, path, func(s *yaml.Node) (any, error) {
		if s.Kind != yaml.SequenceNode {
			return n.generic(s, path, posOther)
		}
		if err := checkTag(s, path, posOther); err != nil {
			return nil, err
		}
		items := make([]any, 0, len(s.Content))
		for i, item := range s.Content {
			p := model.JoinPath(path, model.Index(i))
			if n.dialect == Legacy && n.roles[deref(item)] == rolePool {
				x, err := n.pool(item, p)
				if err != nil {
					return nil, err
				}
				pools = append(pools, x)
				continue
			}
			x, err := n.node(item, p)
			if err != nil {
				return nil, err
			}
			items = append(items, x)
		}
		return items, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, pools, nil
}

func (n *normalizer) node(v *yaml.Node, path string) (any, error) {
	if m := deref(v); m != nil && m.Tag == "!Node" && hasKey(m, "nodes") && !hasKey(m, "hostname") {
		return nil, model.Errorf(path, "entry tagged !Node declares pool members")
	}
	out, err := n.mapping(v, path, posNode, func(e entry) (any, error) {
		return n.generic(e.value, e.path, posOther)
	})
	if err != nil {
		return nil, err
	}
	if fields, ok := out.(map[string]any); ok && n.dialect == Legacy {
		if _, named := fields["name"]; !named {
			if hostname, ok := fields["hostname"]; ok {
				fields["name"] = hostname
			}
		}
	}
	return out, nil
}

func (n *normalizer) pool(v *yaml.Node, path string) (any, error) {
	return n.mapping(v, path, posNodePool, func(e entry) (any, error) {
		if e.key == "nodes" {
			return n.refs(e.value, e.path, roleNode)
		}
		return n.generic(e.value, e.path, posOther)
	})
}

func (n *normalizer) job(v *yaml.Node, path string) (any, error) {
	return n.mapping(v, path, posJob, func(e entry) (any, error) {
		switch e.key {
		case "node":
			return n.ref(e.value, e.path, roleNode, rolePool)
		case "actions":
			return n.sequence(e.value, e.path, n.action)
		case "cleanup_action":
			return n.actionAt(e.value, e.path, posCleanupAction)
		}
		return n.generic(e.value, e.path, posOther)
	})
}

func (n *normalizer) action(v *yaml.Node, path string) (any, error) {
	return n.actionAt(v, path, posAction)
}

func (n *normalizer) actionAt(v *yaml.Node, path string, pos position) (any, error) {
	return n.mapping(v, path, pos, func(e entry) (any, error) {
		switch e.key {
		case "node":
			return n.ref(e.value, e.path, roleNode, rolePool)
		case "requires":
			return n.refs(e.value, e.path, roleAction)
		}
		return n.generic(e.value, e.path, posOther)
	})
}

func (n *normalizer) service(v *yaml.Node, path string) (any, error) {
	return n.mapping(v, path, posService, func(e entry) (any, error) {
		if e.key == "node" {
			return n.ref(e.value, e.path, roleNode, rolePool)
		}
		return n.generic(e.value, e.path, posOther)
	})
}

// ref converts a single reference. An alias to an entity becomes that entity's
// name; plain values pass through.
func (n *normalizer) ref(v *yaml.Node, path string, accept ...role) (any, error) {
	if v.Kind != yaml.AliasNode || v.Alias == nil || v.Alias.Kind == yaml.ScalarNode {
		return n.generic(v, path, posOther)
	}
	t := v.Alias
	r := n.roles[t]
	if !slices.Contains(accept, r) {
		want := accept[0].withArticle()
		if len(accept) > 1 {
			want += " or " + accept[1].String()
		}
		return nil, model.Errorf(path, "alias *%s does not refer to %s", v.Value, want)
	}
	return n.nameOf(t, v.Value, path)
}

// refs converts a reference list. A single reference is lifted into a
// one-element list.
func (n *normalizer) refs(v *yaml.Node, path string, accept ...role) (any, error) {
	t := v
	if v.Kind == yaml.AliasNode && v.Alias != nil && v.Alias.Kind == yaml.SequenceNode {
		t = v.Alias
	}
	switch t.Kind {
	case yaml.SequenceNode:
		if err := checkTag(t, path, posOther); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(t.Content))
		for i, item := range t.Content {
			x, err := n.ref(item, model.JoinPath(path, model.Index(i)), accept...)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	case yaml.ScalarNode:
		if t.ShortTag() == "!!null" {
			return nil, nil
		}
	}
	x, err := n.ref(v, path, accept...)
	if err != nil {
		return nil, err
	}
	return []any{x}, nil
}

// nameOf resolves the name of an aliased entity. Nodes without a name are
// known by their hostname; pools without a name by their derived name.
func (n *normalizer) nameOf(t *yaml.Node, alias, path string) (string, error) {
	if name, ok := n.names[t]; ok {
		return name, nil
	}
	name := scalarField(t, "name")
	switch n.roles[t] {
	case roleNode:
		if name == "" {
			name = scalarField(t, "hostname")
		}
	case rolePool:
		if name == "" {
			if members := lookup(t, "nodes"); members != nil {
				list, err := n.refs(members, path, roleNode)
				if err != nil {
					return "", err
				}
				names, ok := stringList(list)
				if !ok {
					return "", model.Errorf(path, "alias *%s refers to a node pool with invalid members", alias)
				}
				name = model.PoolName(names)
			}
		}
	}
	if name == "" {
		return "", model.Errorf(path, "alias *%s refers to %s without a name", alias, n.roles[t].withArticle())
	}
	n.names[t] = name
	return name, nil
}

func scalarField(m *yaml.Node, key string) string {
	v := deref(lookup(m, key))
	if v == nil || v.Kind != yaml.ScalarNode || v.ShortTag() == "!!null" {
		return ""
	}
	return v.Value
}

func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
