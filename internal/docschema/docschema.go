// Package docschema validates JSON-shaped documents (catalog files, session
// records, model output) against JSON Schemas, caching compiled schemas by
// name.
package docschema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var cache sync.Map // map[string]*jsonschema.Schema

// Compile returns the compiled schema registered under name, compiling
// definition on first use. definition may be raw JSON bytes or any value
// that marshals to a JSON Schema document.
func Compile(name string, definition any) (*jsonschema.Schema, error) {
	if cached, ok := cache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var parsed any
	switch def := definition.(type) {
	case []byte:
		if err := json.Unmarshal(def, &parsed); err != nil {
			return nil, fmt.Errorf("parse schema %q: %w", name, err)
		}
	default:
		norm, err := Normalize(def)
		if err != nil {
			return nil, fmt.Errorf("normalize schema %q: %w", name, err)
		}
		parsed = norm
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", name, err)
	}

	cache.Store(name, compiled)
	return compiled, nil
}

// Validate checks doc against the named schema. doc is normalized through a
// JSON round trip first, so decoded YAML and Go structs are accepted.
func Validate(name string, definition, doc any) error {
	compiled, err := Compile(name, definition)
	if err != nil {
		return err
	}
	norm, err := Normalize(doc)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	if err := compiled.Validate(norm); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return nil
}

// ValidateJSON parses raw and validates it against the named schema.
func ValidateJSON(name string, definition any, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	compiled, err := Compile(name, definition)
	if err != nil {
		return err
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return nil
}

// Normalize converts v into the generic form produced by encoding/json
// (map[string]any, []any, float64, string, bool, nil).
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
