package manifest

import (
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Trait is a behavior attached to a component. Link traits decode into Link;
// every other trait type keeps its properties as a generic map.
type Trait struct {
	Type       string
	Link       *LinkProperty
	Properties map[string]any
}

// LinkProperty wires the component carrying the trait to a target that
// exports the listed interfaces of namespace:package.
type LinkProperty struct {
	Name       string            `yaml:"name,omitempty"`
	Namespace  string            `yaml:"namespace"`
	Package    string            `yaml:"package"`
	Interfaces []string          `yaml:"interfaces"`
	Source     *ConfigDefinition `yaml:"source,omitempty"`
	Target     TargetConfig      `yaml:"target"`
}

// ConfigDefinition carries link-scoped configuration and secrets.
type ConfigDefinition struct {
	Config  []ConfigProperty `yaml:"config,omitempty"`
	Secrets []SecretProperty `yaml:"secrets,omitempty"`
}

// TargetConfig names the component a link points at.
type TargetConfig struct {
	Name    string           `yaml:"name"`
	Config  []ConfigProperty `yaml:"config,omitempty"`
	Secrets []SecretProperty `yaml:"secrets,omitempty"`
}

// NewLinkTrait wraps a link property in a trait.
func NewLinkTrait(p LinkProperty) Trait {
	return Trait{Type: LinkTrait, Link: &p}
}

// IsLink reports whether the trait is a link trait with properties.
func (t Trait) IsLink() bool {
	return t.Type == LinkTrait && t.Link != nil
}

// Clone returns a copy that shares nothing mutable at the top level.
func (t Trait) Clone() Trait {
	out := Trait{Type: t.Type}
	if t.Link != nil {
		l := *t.Link
		l.Interfaces = slices.Clone(t.Link.Interfaces)
		out.Link = &l
	}
	if t.Properties != nil {
		out.Properties = maps.Clone(t.Properties)
	}
	return out
}

type traitDocument struct {
	Type       string    `yaml:"type"`
	Properties yaml.Node `yaml:"properties"`
}

// UnmarshalYAML decodes the trait properties according to the trait type.
func (t *Trait) UnmarshalYAML(node *yaml.Node) error {
	var doc traitDocument
	if err := node.Decode(&doc); err != nil {
		return err
	}
	if doc.Type == "" {
		return fmt.Errorf("line %d: trait without type", node.Line)
	}
	t.Type = doc.Type
	t.Link = nil
	t.Properties = nil

	if doc.Properties.Kind == 0 {
		return nil
	}
	if doc.Type == LinkTrait {
		var link LinkProperty
		if err := doc.Properties.Decode(&link); err != nil {
			return fmt.Errorf("line %d: link trait: %w", doc.Properties.Line, err)
		}
		t.Link = &link
		return nil
	}
	var props map[string]any
	if err := doc.Properties.Decode(&props); err != nil {
		return fmt.Errorf("line %d: %s trait: %w", doc.Properties.Line, doc.Type, err)
	}
	t.Properties = props
	return nil
}

// MarshalYAML encodes the trait as {type, properties}.
func (t Trait) MarshalYAML() (any, error) {
	out := struct {
		Type       string `yaml:"type"`
		Properties any    `yaml:"properties,omitempty"`
	}{Type: t.Type}
	switch {
	case t.Link != nil:
		out.Properties = t.Link
	case t.Properties != nil:
		out.Properties = t.Properties
	}
	return out, nil
}

// UnmarshalYAML accepts both {name: x} and the older scalar form "x".
func (c *TargetConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = TargetConfig{Name: node.Value}
		return nil
	}
	type plain TargetConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = TargetConfig(p)
	return nil
}
