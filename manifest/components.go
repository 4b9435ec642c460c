package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wail/errors"
)

const (
	FileScheme = "file://"
	OCIScheme  = "oci://"
)

var validate = validator.New()

// ComponentsConfig is the list of components to assemble.
type ComponentsConfig struct {
	Entities []Entity `yaml:"entities" json:"entities" validate:"required,min=1,dive" jsonschema:"minItems=1"`
}

// Entity declares one component. Without a source the binary is looked up
// at the conventional build location.
type Entity struct {
	Name   string  `yaml:"name" json:"name" validate:"required" jsonschema:"minLength=1"`
	Source *Source `yaml:"source,omitempty" json:"source,omitempty"`
}

// DefaultLocation is the glob matched when an entity has no source.
func (e Entity) DefaultLocation() string {
	return "./" + e.Name + "/build/*.wasm"
}

// SourceKind tells where a component binary comes from.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceOCI
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceOCI:
		return "oci"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Source is a file path or a registry reference, stored without its scheme.
type Source struct {
	Kind  SourceKind
	Value string
}

// FileSource builds a file source.
func FileSource(path string) *Source {
	return &Source{Kind: SourceFile, Value: path}
}

// OCISource builds a registry source.
func OCISource(ref string) *Source {
	return &Source{Kind: SourceOCI, Value: ref}
}

// ParseSource parses a "file://" or "oci://" URL.
func ParseSource(s string) (*Source, error) {
	switch {
	case strings.HasPrefix(s, FileScheme) && len(s) > len(FileScheme):
		return FileSource(strings.TrimPrefix(s, FileScheme)), nil
	case strings.HasPrefix(s, OCIScheme) && len(s) > len(OCIScheme):
		return OCISource(strings.TrimPrefix(s, OCIScheme)), nil
	default:
		return nil, fmt.Errorf("source %q must start with %s or %s", s, FileScheme, OCIScheme)
	}
}

// String renders the source with its scheme.
func (s Source) String() string {
	if s.Kind == SourceOCI {
		return OCIScheme + s.Value
	}
	return FileScheme + s.Value
}

// UnmarshalYAML accepts "file://x", "oci://x", {path: "file://x"} and
// {reference: "oci://x"}.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = node.Value
	case yaml.MappingNode:
		var m struct {
			Path      string `yaml:"path"`
			Reference string `yaml:"reference"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		switch {
		case m.Path != "" && m.Reference != "":
			return fmt.Errorf("line %d: source has both path and reference", node.Line)
		case m.Path != "":
			if !strings.HasPrefix(m.Path, FileScheme) {
				return fmt.Errorf("line %d: path must start with %s", node.Line, FileScheme)
			}
			raw = m.Path
		case m.Reference != "":
			if !strings.HasPrefix(m.Reference, OCIScheme) {
				return fmt.Errorf("line %d: reference must start with %s", node.Line, OCIScheme)
			}
			raw = m.Reference
		default:
			return fmt.Errorf("line %d: source needs a path or a reference", node.Line)
		}
	default:
		return fmt.Errorf("line %d: unexpected source shape", node.Line)
	}
	parsed, err := ParseSource(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = *parsed
	return nil
}

// MarshalYAML encodes the source in its scalar form.
func (s Source) MarshalYAML() (any, error) {
	return s.String(), nil
}

// JSONSchema describes the accepted source shapes.
func (Source) JSONSchema() *jsonschema.Schema {
	path := orderedmap.New[string, *jsonschema.Schema]()
	path.Set("path", &jsonschema.Schema{Type: "string", Pattern: "^file://.+"})
	ref := orderedmap.New[string, *jsonschema.Schema]()
	ref.Set("reference", &jsonschema.Schema{Type: "string", Pattern: "^oci://.+"})

	return &jsonschema.Schema{
		Description: "component binary location",
		OneOf: []*jsonschema.Schema{
			{Type: "string", Pattern: "^(file|oci)://.+"},
			{Type: "object", Properties: path, Required: []string{"path"}},
			{Type: "object", Properties: ref, Required: []string{"reference"}},
		},
	}
}

// ParseComponents decodes and validates a components document.
func ParseComponents(data []byte) (*ComponentsConfig, error) {
	if err := ValidateComponents(data); err != nil {
		return nil, err
	}
	var cfg ComponentsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ParseFailed("components document", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "invalid components document")
	}
	return &cfg, nil
}

// LoadComponents reads a components document from disk.
func LoadComponents(path string) (*ComponentsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read components "+path, err)
	}
	return ParseComponents(data)
}
