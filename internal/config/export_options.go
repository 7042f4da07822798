package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ExportOptions is the user-supplied export document: either inline (a YAML
// mapping in the config file) or a path to a plist on disk. At most one of
// Path and Inline is set.
type ExportOptions struct {
	Path   string
	Inline map[string]any
}

// IsSet reports whether the user supplied any export options.
func (e ExportOptions) IsSet() bool {
	return e.Path != "" || e.Inline != nil
}

// UnmarshalYAML accepts a scalar (path) or a mapping (inline document).
func (e *ExportOptions) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var p string
		if err := node.Decode(&p); err != nil {
			return err
		}
		e.Path = p
		e.Inline = nil
		return nil
	case yaml.MappingNode:
		m := map[string]any{}
		if err := node.Decode(&m); err != nil {
			return err
		}
		e.Inline = m
		e.Path = ""
		return nil
	default:
		return fmt.Errorf("export_options: expected a path or a mapping at line %d", node.Line)
	}
}

// MarshalYAML renders the path or the inline mapping.
func (e ExportOptions) MarshalYAML() (any, error) {
	if e.Inline != nil {
		return e.Inline, nil
	}
	if e.Path != "" {
		return e.Path, nil
	}
	return nil, nil
}

// IsZero lets omitempty drop unset export options.
func (e ExportOptions) IsZero() bool {
	return !e.IsSet()
}
