package builder

import (
	"slices"

	"github.com/sourceplane/jobconf/internal/model"
)

var (
	actionKeys  = []string{"name", "command", "node", "requires"}
	cleanupKeys = []string{"name", "command", "node"}
)

type actionFields struct {
	Name    string `yaml:"name" validate:"required"`
	Command string `yaml:"command" validate:"required"`
}

// BuildActions builds the actions of one job in declaration order. Requires
// are kept as names; whether they resolve is checked once every job is built.
func BuildActions(path string, v any) ([]model.Action, error) {
	if v == nil {
		return nil, model.Errorf(path, "job must declare at least one action")
	}
	items, err := list(v, path)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, model.Errorf(path, "job must declare at least one action")
	}

	actions := make([]model.Action, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		p := entityPath(path, i, item)
		a, err := buildAction(p, item)
		if err != nil {
			return nil, err
		}
		if a.Name() == model.CleanupActionName {
			return nil, model.Errorf(p, "action name %q is reserved for the cleanup action", a.Name())
		}
		if seen[a.Name()] {
			return nil, model.Errorf(p, "duplicate action name %q", a.Name())
		}
		seen[a.Name()] = true
		actions = append(actions, a)
	}
	return actions, nil
}

func buildAction(path string, v any) (model.Action, error) {
	f, err := asFields(v, path)
	if err != nil {
		return model.Action{}, err
	}
	if err := f.unknown(actionKeys); err != nil {
		return model.Action{}, err
	}
	var af actionFields
	if af.Name, err = f.str("name"); err != nil {
		return model.Action{}, err
	}
	if af.Command, err = f.str("command"); err != nil {
		return model.Action{}, err
	}
	if err := checkStruct(path, af); err != nil {
		return model.Action{}, err
	}
	node, err := f.str("node")
	if err != nil {
		return model.Action{}, err
	}
	requires, err := f.strings("requires")
	if err != nil {
		return model.Action{}, err
	}
	return model.NewAction(af.Name, af.Command, node, dedupe(requires)), nil
}

// BuildCleanupAction builds a job's cleanup action. Its name may only be the
// reserved one, and it cannot require other actions.
func BuildCleanupAction(path string, v any) (model.Action, error) {
	f, err := asFields(v, path)
	if err != nil {
		return model.Action{}, err
	}
	if f.has("requires") {
		return model.Action{}, model.Errorf(f.at("requires"), "cleanup action cannot declare requires")
	}
	if err := f.unknown(cleanupKeys); err != nil {
		return model.Action{}, err
	}
	name, err := f.str("name")
	if err != nil {
		return model.Action{}, err
	}
	if f.has("name") && name != model.CleanupActionName {
		return model.Action{}, model.Errorf(f.at("name"), "cleanup action must be named %q or left unnamed, got %q", model.CleanupActionName, name)
	}
	af := actionFields{Name: model.CleanupActionName}
	if af.Command, err = f.str("command"); err != nil {
		return model.Action{}, err
	}
	if err := checkStruct(path, af); err != nil {
		return model.Action{}, err
	}
	node, err := f.str("node")
	if err != nil {
		return model.Action{}, err
	}
	return model.NewCleanupAction(af.Command, node), nil
}

// dedupe drops repeated names, keeping the first occurrence.
func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
