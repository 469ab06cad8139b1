// Package normalize lifts both supported input dialects into one canonical
// document so that builders never branch on the dialect.
package normalize

import (
	"github.com/sourceplane/jobconf/internal/model"
	"gopkg.in/yaml.v3"
)

// Document is a configuration in canonical shape: nested map[string]any and
// []any with string, int, float64, bool or nil leaves. No two paths share
// structure.
type Document map[string]any

// Result is the output of Normalize.
type Result struct {
	Dialect  Dialect
	Document Document
}

type entry struct {
	key   string
	value *yaml.Node
	path  string
}

type normalizer struct {
	dialect Dialect
	roles   map[*yaml.Node]role
	names   map[*yaml.Node]string
	// active holds alias targets being expanded, to stop self-referencing
	// anchors.
	active map[*yaml.Node]bool
}

// Normalize detects the dialect of root and returns the canonical document.
// Aliases are expanded into independent copies, or into entity names where they
// are used as references.
func Normalize(root *yaml.Node) (*Result, error) {
	if root != nil && root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			root = nil
		} else {
			root = root.Content[0]
		}
	}
	if root == nil {
		return nil, model.Errorf("", "configuration is empty")
	}

	n := &normalizer{
		dialect: detect(root),
		roles:   make(map[*yaml.Node]role),
		names:   make(map[*yaml.Node]string),
		active:  make(map[*yaml.Node]bool),
	}
	doc, err := n.document(root)
	if err != nil {
		return nil, err
	}
	return &Result{Dialect: n.dialect, Document: doc}, nil
}

func (n *normalizer) document(root *yaml.Node) (Document, error) {
	if root.Kind != yaml.MappingNode {
		return nil, model.Errorf("", "configuration must be a mapping")
	}
	if err := checkTag(root, "", posRoot); err != nil {
		return nil, err
	}
	entries, err := n.entries(root, "")
	if err != nil {
		return nil, err
	}
	if n.dialect == Legacy {
		n.classify(entries)
	}

	doc := make(Document, len(entries))
	var inlinePools []any
	for _, e := range entries {
		var v any
		var err error
		switch e.key {
		case "nodes":
			var pools []any
			v, pools, err = n.nodes(e.value, e.path)
			inlinePools = append(inlinePools, pools...)
		case "node_pools":
			v, err = n.sequence(e.value, e.path, n.pool)
		case "jobs":
			v, err = n.sequence(e.value, e.path, n.job)
		case "services":
			v, err = n.sequence(e.value, e.path, n.service)
		case "ssh_options":
			v, err = n.generic(e.value, e.path, posSSHOptions)
		case "notification_options":
			v, err = n.generic(e.value, e.path, posNotificationOptions)
		case "state_persistence":
			v, err = n.generic(e.value, e.path, posStatePersistence)
		default:
			v, err = n.generic(e.value, e.path, posOther)
		}
		if err != nil {
			return nil, err
		}
		doc[e.key] = v
	}

	if len(inlinePools) > 0 {
		if _, ok := doc["node_pools"]; ok {
			return nil, model.Errorf("node_pools", "node pools are declared both inline under nodes and in node_pools")
		}
		doc["node_pools"] = inlinePools
	}
	return doc, nil
}

// follow calls fn with the target of v when v is an alias, and with v itself
// otherwise.
func follow[T any](n *normalizer, v *yaml.Node, path string, fn func(*yaml.Node) (T, error)) (T, error) {
	if v.Kind != yaml.AliasNode {
		return fn(v)
	}
	var zero T
	t := v.Alias
	if t == nil {
		return zero, model.Errorf(path, "alias *%s is not defined", v.Value)
	}
	if n.active[t] {
		return zero, model.Errorf(path, "alias *%s refers to itself", v.Value)
	}
	n.active[t] = true
	defer delete(n.active, t)
	return fn(t)
}

func deref(v *yaml.Node) *yaml.Node {
	for i := 0; v != nil && v.Kind == yaml.AliasNode && i < 16; i++ {
		v = v.Alias
	}
	return v
}

// entries lists the keys of mapping m in order, expanding merge keys. Explicit
// keys win over merged ones, and earlier merge sources win over later ones.
func (n *normalizer) entries(m *yaml.Node, path string) ([]entry, error) {
	var out []entry
	var merges []*yaml.Node
	seen := make(map[string]bool)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := deref(m.Content[i]), m.Content[i+1]
		if k == nil || k.Kind != yaml.ScalarNode {
			return nil, model.Errorf(path, "mapping keys must be scalars (line %d)", m.Content[i].Line)
		}
		if k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		if seen[k.Value] {
			return nil, model.Errorf(path, "duplicate key %q", k.Value)
		}
		seen[k.Value] = true
		out = append(out, entry{key: k.Value, value: v, path: model.JoinPath(path, k.Value)})
	}

	for _, src := range merges {
		merged, err := n.mergeSource(src, path)
		if err != nil {
			return nil, err
		}
		for _, e := range merged {
			if seen[e.key] {
				continue
			}
			seen[e.key] = true
			out = append(out, entry{key: e.key, value: e.value, path: model.JoinPath(path, e.key)})
		}
	}
	return out, nil
}

func (n *normalizer) mergeSource(src *yaml.Node, path string) ([]entry, error) {
	return follow(n, src, path, func(t *yaml.Node) ([]entry, error) {
		switch t.Kind {
		case yaml.MappingNode:
			return n.entries(t, path)
		case yaml.SequenceNode:
			var out []entry
			for _, item := range t.Content {
				es, err := n.mergeSource(item, path)
				if err != nil {
					return nil, err
				}
				out = append(out, es...)
			}
			return out, nil
		}
		return nil, model.Errorf(path, "merge key value must be a mapping or a list of mappings")
	})
}

// generic converts any subtree, copying alias targets.
func (n *normalizer) generic(v *yaml.Node, path string, pos position) (any, error) {
	return follow(n, v, path, func(t *yaml.Node) (any, error) {
		if err := checkTag(t, path, pos); err != nil {
			return nil, err
		}
		switch t.Kind {
		case yaml.MappingNode:
			es, err := n.entries(t, path)
			if err != nil {
				return nil, err
			}
			out := make(map[string]any, len(es))
			for _, e := range es {
				x, err := n.generic(e.value, e.path, posOther)
				if err != nil {
					return nil, err
				}
				out[e.key] = x
			}
			return out, nil
		case yaml.SequenceNode:
			out := make([]any, 0, len(t.Content))
			for i, item := range t.Content {
				x, err := n.generic(item, model.JoinPath(path, model.Index(i)), posOther)
				if err != nil {
					return nil, err
				}
				out = append(out, x)
			}
			return out, nil
		case yaml.ScalarNode:
			return scalar(t, path)
		}
		return nil, model.Errorf(path, "unsupported YAML node at line %d", t.Line)
	})
}

func scalar(t *yaml.Node, path string) (any, error) {
	switch t.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := t.Decode(&b); err != nil {
			return nil, model.Wrap(path, err, "invalid boolean")
		}
		return b, nil
	case "!!int":
		var i int
		if err := t.Decode(&i); err != nil {
			return nil, model.Wrap(path, err, "invalid integer")
		}
		return i, nil
	case "!!float":
		var f float64
		if err := t.Decode(&f); err != nil {
			return nil, model.Wrap(path, err, "invalid number")
		}
		return f, nil
	}
	return t.Value, nil
}

// sequence converts a list whose items are entities of one kind. Anything
// other than a list is passed through for the schema check to report.
func (n *normalizer) sequence(v *yaml.Node, path string, item func(*yaml.Node, string) (any, error)) (any, error) {
	return follow(n, v, path, func(s *yaml.Node) (any, error) {
		if s.Kind != yaml.SequenceNode {
			return n.generic(s, path, posOther)
		}
		if err := checkTag(s, path, posOther); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(s.Content))
		for i, c := range s.Content {
			x, err := item(c, model.JoinPath(path, model.Index(i)))
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	})
}

// mapping converts an entity mapping at pos; fields are converted by field.
func (n *normalizer) mapping(v *yaml.Node, path string, pos position, field func(entry) (any, error)) (any, error) {
	return follow(n, v, path, func(m *yaml.Node) (any, error) {
		if m.Kind != yaml.MappingNode {
			return n.generic(m, path, posOther)
		}
		if err := checkTag(m, path, pos); err != nil {
			return nil, err
		}
		es, err := n.entries(m, path)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(es))
		for _, e := range es {
			x, err := field(e)
			if err != nil {
				return nil, err
			}
			out[e.key] = x
		}
		return out, nil
	})
}
