// Package schema checks the structure and value types of a canonical document
// against an embedded JSON schema before any builder runs.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sourceplane/jobconf/internal/model"
	"github.com/sourceplane/jobconf/internal/normalize"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.yaml
var configSchema []byte

const schemaURL = "jobconf://config.schema.json"

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(configSchema)
})

// compileSchema compiles a schema written in YAML (or JSON).
func compileSchema(data []byte) (*jsonschema.Schema, error) {
	var schemaData interface{}
	if err := yaml.Unmarshal(data, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	// Convert to JSON for schema compiler
	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schema, err := jsonschema.CompileString(schemaURL, string(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// Validate checks doc against the configuration schema. The first violation is
// returned as a ConfigError located at the offending field.
func Validate(doc normalize.Document) error {
	return validate(doc, compiled)
}

func validate(doc normalize.Document, load func() (*jsonschema.Schema, error)) error {
	schema, err := load()
	if err != nil {
		return model.Wrap("", err, "configuration schema unavailable")
	}

	instance, err := toJSONValue(doc)
	if err != nil {
		return model.Wrap("", err, "configuration cannot be represented as JSON")
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return model.Wrap("", err, "schema validation failed")
	}
	leaf := firstLeaf(verr)
	return model.Errorf(instancePath(leaf.InstanceLocation), "%s", leaf.Message)
}

// toJSONValue re-decodes doc the way the validator expects JSON input: numbers
// as json.Number.
func toJSONValue(doc normalize.Document) (any, error) {
	data, err := json.Marshal(map[string]any(doc))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func firstLeaf(e *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(e.Causes) > 0 {
		e = e.Causes[0]
	}
	return e
}

// instancePath turns a JSON pointer ("/jobs/0/run_limit") into a config path
// ("jobs[0].run_limit").
func instancePath(pointer string) string {
	path := ""
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if seg == "" {
			continue
		}
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if i, err := strconv.Atoi(seg); err == nil {
			path = model.JoinPath(path, model.Index(i))
			continue
		}
		path = model.JoinPath(path, seg)
	}
	return path
}
