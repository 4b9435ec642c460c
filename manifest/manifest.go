package manifest

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wail/errors"
)

const (
	// OAMVersion is the apiVersion of wadm application manifests.
	OAMVersion = "core.oam.dev/v1beta1"
	// ApplicationKind is the kind of wadm application manifests.
	ApplicationKind = "Application"

	VersionAnnotationKey     = "version"
	DescriptionAnnotationKey = "description"

	// LinkTrait is the trait type that wires an importer to an exporter.
	LinkTrait         = "link"
	SpreadScalerTrait = "spreadscaler"
	DaemonScalerTrait = "daemonscaler"
)

// ComponentType distinguishes WebAssembly components from capability
// providers.
type ComponentType string

const (
	TypeComponent  ComponentType = "component"
	TypeCapability ComponentType = "capability"
)

// Manifest is a wadm application deployment description.
type Manifest struct {
	APIVersion string        `yaml:"apiVersion"`
	Kind       string        `yaml:"kind"`
	Metadata   Metadata      `yaml:"metadata"`
	Spec       Specification `yaml:"spec"`
}

type Metadata struct {
	Name        string            `yaml:"name"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

type Specification struct {
	Components []Component `yaml:"components"`
	Policies   []Policy    `yaml:"policies,omitempty"`
}

// Component is one deployable unit of the application.
type Component struct {
	Name       string        `yaml:"name"`
	Type       ComponentType `yaml:"type"`
	Properties Properties    `yaml:"properties"`
	Traits     []Trait       `yaml:"traits,omitempty"`
}

// Properties locate the component's code. Exactly one of Image or
// Application is expected.
type Properties struct {
	Image       string           `yaml:"image,omitempty"`
	Application *SharedReference `yaml:"application,omitempty"`
	ID          string           `yaml:"id,omitempty"`
	Config      []ConfigProperty `yaml:"config,omitempty"`
	Secrets     []SecretProperty `yaml:"secrets,omitempty"`
}

// HasCode reports whether the properties reference an image or a shared
// application component.
func (p Properties) HasCode() bool {
	return p.Image != "" || p.Application != nil
}

// SharedReference points at a component owned by another application.
type SharedReference struct {
	Name      string `yaml:"name"`
	Component string `yaml:"component"`
}

type ConfigProperty struct {
	Name       string            `yaml:"name"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

type SecretProperty struct {
	Name       string       `yaml:"name"`
	Properties SecretSource `yaml:"properties"`
}

type SecretSource struct {
	Policy  string `yaml:"policy"`
	Key     string `yaml:"key"`
	Field   string `yaml:"field,omitempty"`
	Version string `yaml:"version,omitempty"`
}

type Policy struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// FindComponent returns the component named name.
func (m *Manifest) FindComponent(name string) (*Component, bool) {
	for i := range m.Spec.Components {
		if m.Spec.Components[i].Name == name {
			return &m.Spec.Components[i], true
		}
	}
	return nil, false
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.ParseFailed("manifest", err)
	}
	return &m, nil
}

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read manifest "+path, err)
	}
	return Parse(data)
}

// Marshal encodes a manifest as a YAML document with a leading "---".
func Marshal(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a manifest to w.
func Write(w io.Writer, m *Manifest) error {
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "write manifest")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "encode manifest")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "encode manifest")
	}
	return nil
}
