// Package loader decodes configuration text into a YAML document tree. Tags,
// anchors and aliases are kept as-is so the normalizer can tell the dialects
// apart.
package loader

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/sourceplane/jobconf/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and decodes a configuration file.
func LoadFile(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.Wrap("", err, "failed to read config file")
	}
	return Decode(data)
}

// Decode parses exactly one YAML document. The returned node is the document's
// root value, never the DocumentNode wrapper.
func Decode(data []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.Errorf("", "configuration is empty")
		}
		return nil, model.Wrap("", err, "failed to parse config YAML")
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, model.Errorf("", "configuration must contain a single YAML document, found another at line %d", extra.Line)
	} else if !errors.Is(err, io.EOF) {
		return nil, model.Wrap("", err, "failed to parse config YAML")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, model.Errorf("", "configuration is empty")
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil, model.Errorf("", "configuration is empty")
	}
	return root, nil
}
