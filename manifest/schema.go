package manifest

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	schemavalidator "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wail/errors"
)

const componentsSchemaURL = "components.schema.json"

var (
	componentsSchemaOnce sync.Once
	componentsSchema     *schemavalidator.Schema
	componentsSchemaErr  error
)

// ComponentsSchema returns the JSON schema of the components document.
func ComponentsSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		Anonymous:      true,
	}
	schema := reflector.Reflect(&ComponentsConfig{})
	schema.Title = "wail components"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal components schema: %w", err)
	}
	return data, nil
}

func compiledComponentsSchema() (*schemavalidator.Schema, error) {
	componentsSchemaOnce.Do(func() {
		data, err := ComponentsSchema()
		if err != nil {
			componentsSchemaErr = err
			return
		}
		compiler := schemavalidator.NewCompiler()
		if err := compiler.AddResource(componentsSchemaURL, bytes.NewReader(data)); err != nil {
			componentsSchemaErr = fmt.Errorf("add components schema: %w", err)
			return
		}
		componentsSchema, componentsSchemaErr = compiler.Compile(componentsSchemaURL)
	})
	return componentsSchema, componentsSchemaErr
}

// ValidateComponents checks a YAML components document against the schema.
func ValidateComponents(data []byte) error {
	sch, err := compiledComponentsSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.ParseFailed("components document", err)
	}
	// Round-trip through JSON so the validator sees JSON value types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert components: %w", err)
	}
	var obj any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("convert components: %w", err)
	}

	if err := sch.Validate(obj); err != nil {
		var verr *schemavalidator.ValidationError
		var path []string
		if stderrors.As(err, &verr) {
			path = instancePath(verr)
		}
		e := errors.InvalidData(errors.PhaseParse, path, "components document does not match schema")
		e.Cause = err
		return e
	}
	return nil
}

// instancePath follows the first cause down to the innermost failing value
// and splits its JSON pointer into path elements.
func instancePath(verr *schemavalidator.ValidationError) []string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	var path []string
	for _, part := range strings.Split(verr.InstanceLocation, "/") {
		if part != "" {
			path = append(path, part)
		}
	}
	return path
}
