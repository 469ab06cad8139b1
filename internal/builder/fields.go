package builder

import (
	"fmt"
	"slices"

	"github.com/sourceplane/jobconf/internal/model"
)

// fields reads typed values out of one canonical mapping. Every error is a
// ConfigError located at path plus the field name.
type fields struct {
	path string
	m    map[string]any
}

func asFields(v any, path string) (fields, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return fields{}, model.Errorf(path, "must be a mapping, got %s", kindOf(v))
	}
	return fields{path: path, m: m}, nil
}

func (f fields) at(key string) string {
	return model.JoinPath(f.path, key)
}

// has reports whether key is present, even with a null value.
func (f fields) has(key string) bool {
	_, ok := f.m[key]
	return ok
}

func (f fields) get(key string) any {
	return f.m[key]
}

// str returns the string at key, or "" when it is absent or null.
func (f fields) str(key string) (string, error) {
	v, ok := f.m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", model.Errorf(f.at(key), "must be a string, got %s", kindOf(v))
	}
	return s, nil
}

func (f fields) boolean(key string, def bool) (bool, error) {
	v, ok := f.m[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, model.Errorf(f.at(key), "must be a boolean, got %s", kindOf(v))
	}
	return b, nil
}

func (f fields) integer(key string, def int) (int, error) {
	p, err := f.optionalInt(key)
	if err != nil || p == nil {
		return def, err
	}
	return *p, nil
}

// optionalInt returns nil when key is absent or null.
func (f fields) optionalInt(key string) (*int, error) {
	v, ok := f.m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case int:
		return &n, nil
	case float64:
		if n == float64(int(n)) {
			i := int(n)
			return &i, nil
		}
	}
	return nil, model.Errorf(f.at(key), "must be an integer, got %s", kindOf(v))
}

// strings returns the list at key. A single string is read as a list of one.
func (f fields) strings(key string) ([]string, error) {
	v, ok := f.m[key]
	if !ok || v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, model.Errorf(f.at(key), "must be a list of strings, got %s", kindOf(v))
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, model.Errorf(model.JoinPath(f.at(key), model.Index(i)), "must be a string, got %s", kindOf(item))
		}
		out = append(out, s)
	}
	return out, nil
}

// reject fails on the first present key from keys, in the order given.
func (f fields) reject(keys []string, format string) error {
	for _, k := range keys {
		if f.has(k) {
			return model.Errorf(f.at(k), format, k)
		}
	}
	return nil
}

// unknown fails on the first key, in sorted order, that is not in allowed.
func (f fields) unknown(allowed []string) error {
	keys := make([]string, 0, len(f.m))
	for k := range f.m {
		if !slices.Contains(allowed, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	slices.Sort(keys)
	return model.Errorf(f.at(keys[0]), "unknown field %q", keys[0])
}

// entityPath locates the i-th item of section by its name when it has one.
func entityPath(section string, i int, v any) string {
	if m, ok := v.(map[string]any); ok {
		if name, ok := m["name"].(string); ok && name != "" {
			return model.JoinPath(section, name)
		}
	}
	return model.JoinPath(section, model.Index(i))
}

// list returns the items of a section, treating absent and null as empty.
func list(v any, path string) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, model.Errorf(path, "must be a list, got %s", kindOf(v))
	}
	return items, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}
