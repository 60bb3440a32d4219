package checks

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema pairs a compiled JSON schema with its raw document so checks can
// both validate structure and enumerate the declared top-level fields.
type Schema struct {
	Name     string
	Compiled *jsonschema.Schema

	doc map[string]any
}

// LoadSchema reads and compiles a JSON schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("checks: read schema %s: %w", path, err)
	}
	return CompileSchema(path, data)
}

// CompileSchema compiles raw schema bytes. The name is used only for error
// reporting and compiler resource identity.
func CompileSchema(name string, data []byte) (*Schema, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("checks: schema %s is not valid JSON: %w", name, err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("checks: schema %s is not valid JSON: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", value); err != nil {
		return nil, fmt.Errorf("checks: add schema resource %s: %w", name, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("checks: compile schema %s: %w", name, err)
	}

	return &Schema{Name: name, Compiled: compiled, doc: doc}, nil
}

// Properties returns the schema's top-level property names in sorted order.
func (s *Schema) Properties() []string {
	props, ok := s.doc["properties"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ArrayProperties returns the top-level properties declared with type
// "array", in sorted order.
func (s *Schema) ArrayProperties() []string {
	props, ok := s.doc["properties"].(map[string]any)
	if !ok {
		return nil
	}
	var names []string
	for name, raw := range props {
		spec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := spec["type"].(string); t == "array" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
