package model

import (
	"errors"
	"fmt"
)

// ConfigError is the single error kind returned by every compilation stage.
// Path locates the offending entity and field, e.g. "jobs.nightly.actions.load.requires".
type ConfigError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Errorf builds a ConfigError at path.
func Errorf(path, format string, args ...any) error {
	return &ConfigError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a ConfigError at path carrying cause.
func Wrap(path string, cause error, msg string) error {
	return &ConfigError{Path: path, Msg: msg, Err: cause}
}

// WithinPath prefixes the path of a ConfigError with prefix. Other errors are
// wrapped into a ConfigError located at prefix.
func WithinPath(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		return &ConfigError{Path: prefix, Err: err}
	}
	return &ConfigError{Path: JoinPath(prefix, ce.Path), Msg: ce.Msg, Err: ce.Err}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// JoinPath joins path segments with dots, skipping empty ones. Segments that
// start with an index ("[2]") are appended without a separator.
func JoinPath(parts ...string) string {
	out := ""
	for _, p := range parts {
		switch {
		case p == "":
		case out == "":
			out = p
		case p[0] == '[':
			out += p
		default:
			out += "." + p
		}
	}
	return out
}

// Index renders a sequence position as a path segment.
func Index(i int) string {
	return fmt.Sprintf("[%d]", i)
}
