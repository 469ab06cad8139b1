// Package compiler runs the whole pipeline from configuration text to an
// immutable Config:
//
//	decode -> normalize -> schema -> build -> validate -> assemble
//
// Each compilation owns all of its intermediate state, so any number of
// compilations may run at the same time.
package compiler

import (
	"github.com/sourceplane/jobconf/internal/builder"
	"github.com/sourceplane/jobconf/internal/loader"
	"github.com/sourceplane/jobconf/internal/model"
	"github.com/sourceplane/jobconf/internal/normalize"
	"github.com/sourceplane/jobconf/internal/schema"
	"github.com/sourceplane/jobconf/internal/validate"
	"gopkg.in/yaml.v3"
)

// Compile compiles configuration text in either dialect.
func Compile(data []byte) (*model.Config, error) {
	root, err := loader.Decode(data)
	if err != nil {
		return nil, err
	}
	return CompileDocument(root)
}

// CompileFile reads and compiles the configuration file at path.
func CompileFile(path string) (*model.Config, error) {
	root, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return CompileDocument(root)
}

// CompileDocument compiles an already decoded YAML tree.
func CompileDocument(root *yaml.Node) (*model.Config, error) {
	res, err := normalize.Normalize(root)
	if err != nil {
		return nil, err
	}
	return CompileCanonical(res.Document)
}

// CompileCanonical compiles a document that is already in canonical shape.
func CompileCanonical(doc normalize.Document) (*model.Config, error) {
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}
	sections, err := builder.Build(doc)
	if err != nil {
		return nil, err
	}
	if err := validate.Validate(sections); err != nil {
		return nil, err
	}
	return Assemble(sections), nil
}

// Assemble freezes validated sections into a Config. The Config shares no
// mutable state with s.
func Assemble(s *builder.Sections) *model.Config {
	return &model.Config{
		WorkingDir:          s.WorkingDir,
		OutputStreamDir:     s.OutputStreamDir,
		SyslogAddress:       s.SyslogAddress,
		TimeZone:            s.TimeZone,
		SSHOptions:          s.SSHOptions.Clone(),
		NotificationOptions: cloneNotification(s.NotificationOptions),
		StatePersistence:    s.StatePersistence,
		CommandContext:      model.NewMap(s.CommandContext),
		Nodes:               model.NewMap(s.Nodes),
		NodePools:           model.NewMap(s.NodePools),
		Jobs:                model.NewMap(s.Jobs),
		Services:            model.NewMap(s.Services),
	}
}

func cloneNotification(n *model.NotificationOptions) *model.NotificationOptions {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
