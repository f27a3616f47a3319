// Package schema loads the metadata JSON Schema document and validates
// extracted metadata objects against it. The schema is the contract between
// this application and the LLM: every field the model produces must be
// declared here, and enumerated fields must use one of the allowed values.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Property describes one metadata field in the schema document.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is the parsed metadata schema. Loaded once at startup, read-only
// for the lifetime of the process.
type Schema struct {
	Title      string              `json:"title,omitempty"`
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`

	raw []byte // compacted original document, embedded verbatim in the prompt
}

// Load reads and parses the schema document at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse parses a schema document from raw JSON bytes.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(s.Properties) == 0 {
		return nil, fmt.Errorf("schema declares no properties")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("compact schema: %w", err)
	}
	s.raw = buf.Bytes()

	return &s, nil
}

// JSON returns the original schema document, compacted, for prompt embedding.
// Using the raw document rather than re-marshaling keeps the prompt stable
// across Go map iteration order.
func (s *Schema) JSON() string {
	return string(s.raw)
}

// Validate checks a metadata object against the schema: no undeclared fields,
// all required fields present, and enum membership for enumerated fields
// (an empty string is accepted as the explicit "unknown" sentinel).
// Returns nil if the object conforms; the first violation otherwise.
func (s *Schema) Validate(metadata map[string]any) error {
	for name := range metadata {
		if _, ok := s.Properties[name]; !ok {
			return fmt.Errorf("field %q is not declared in the schema", name)
		}
	}

	for _, name := range s.Required {
		if _, ok := metadata[name]; !ok {
			return fmt.Errorf("required field %q is missing", name)
		}
	}

	for name, value := range metadata {
		prop := s.Properties[name]
		if err := validateValue(name, prop, value); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(name string, prop Property, value any) error {
	if value == nil {
		return fmt.Errorf("field %q is null", name)
	}

	switch prop.Type {
	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("field %q: expected array, got %T", name, value)
		}
		if prop.Items == nil {
			return nil
		}
		for _, item := range items {
			if err := validateValue(name, *prop.Items, item); err != nil {
				return err
			}
		}
		return nil

	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q: expected string, got %T", name, value)
		}
		if len(prop.Enum) > 0 && !inEnum(str, prop.Enum) {
			return fmt.Errorf("field %q: value %q is not in the allowed set", name, str)
		}
		return nil

	default:
		// No other types appear in the metadata schema; accept as-is.
		return nil
	}
}

func inEnum(value string, enum []string) bool {
	if value == "" {
		// Explicit "unknown" sentinel.
		return true
	}
	for _, allowed := range enum {
		if value == allowed {
			return true
		}
	}
	return false
}
