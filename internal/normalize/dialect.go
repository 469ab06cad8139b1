package normalize

import (
	"slices"
	"strings"

	"github.com/sourceplane/jobconf/internal/model"
	"gopkg.in/yaml.v3"
)

// Dialect identifies the input flavour of a configuration document.
type Dialect int

const (
	// Canonical documents use plain nested mappings and name references.
	Canonical Dialect = iota
	// Legacy documents carry type tags and refer to entities through
	// anchors and aliases.
	Legacy
)

func (d Dialect) String() string {
	if d == Legacy {
		return "legacy"
	}
	return "canonical"
}

// position is where a mapping sits in the document; legacy tags are only
// accepted at their own position.
type position int

const (
	posOther position = iota
	posRoot
	posSSHOptions
	posNotificationOptions
	posStatePersistence
	posNode
	posNodePool
	posJob
	posAction
	posCleanupAction
	posService
)

var legacyTags = map[string][]position{
	"!TronConfiguration":   {posRoot},
	"!Configuration":       {posRoot},
	"!SSHOptions":          {posSSHOptions},
	"!NotificationOptions": {posNotificationOptions},
	"!StatePersistence":    {posStatePersistence},
	"!Node":                {posNode},
	"!NodePool":            {posNode, posNodePool},
	"!Job":                 {posJob},
	"!Action":              {posAction},
	"!CleanupAction":       {posCleanupAction},
	"!Service":             {posService},
}

func isLegacyTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!") && tag != "!"
}

// detect reports Legacy when any tag, anchor or alias appears in the tree.
func detect(n *yaml.Node) Dialect {
	if n == nil {
		return Canonical
	}
	if n.Kind == yaml.AliasNode || n.Anchor != "" || isLegacyTag(n.Tag) {
		return Legacy
	}
	for _, c := range n.Content {
		if detect(c) == Legacy {
			return Legacy
		}
	}
	return Canonical
}

// checkTag rejects legacy tags outside their supported position.
func checkTag(n *yaml.Node, path string, pos position) error {
	if !isLegacyTag(n.Tag) {
		return nil
	}
	allowed, known := legacyTags[n.Tag]
	if !known {
		return model.Errorf(path, "unsupported legacy tag %s", n.Tag)
	}
	if n.Kind != yaml.MappingNode || !slices.Contains(allowed, pos) {
		return model.Errorf(path, "legacy tag %s is not supported at this position", n.Tag)
	}
	return nil
}
