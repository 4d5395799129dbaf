// Package schema describes the structure of a SOAP note in the form the model
// provider accepts as a response schema, and validates provider output against
// the equivalent JSON Schema.
package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Type is a provider schema type name
type Type string

const (
	TypeObject Type = "OBJECT"
	TypeArray  Type = "ARRAY"
	TypeString Type = "STRING"
)

// Schema mirrors the provider's response schema object
type Schema struct {
	Type             Type               `json:"type"`
	Description      string             `json:"description,omitempty"`
	Properties       map[string]*Schema `json:"properties,omitempty"`
	PropertyOrdering []string           `json:"propertyOrdering,omitempty"`
	Required         []string           `json:"required,omitempty"`
	Items            *Schema            `json:"items,omitempty"`
}

// Field is a named property of an object schema
type Field struct {
	Name     string
	Schema   *Schema
	Optional bool
}

// Object builds an object schema; fields keep their declared order and are
// required unless marked optional.
func Object(fields ...Field) *Schema {
	s := &Schema{
		Type:       TypeObject,
		Properties: make(map[string]*Schema, len(fields)),
	}
	for _, f := range fields {
		s.Properties[f.Name] = f.Schema
		s.PropertyOrdering = append(s.PropertyOrdering, f.Name)
		if !f.Optional {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s
}

// ArrayOf builds an array schema
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// String builds a string schema
func String() *Schema {
	return &Schema{Type: TypeString}
}

// Described sets a description on s and returns it
func (s *Schema) Described(description string) *Schema {
	s.Description = description
	return s
}

// ToJSONSchema converts the provider schema into a draft-07 JSON Schema document
func (s *Schema) ToJSONSchema() map[string]interface{} {
	out := map[string]interface{}{
		"type": strings.ToLower(string(s.Type)),
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.ToJSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		required := make([]interface{}, len(s.Required))
		for i, r := range s.Required {
			required[i] = r
		}
		out["required"] = required
	}
	if s.Items != nil {
		out["items"] = s.Items.ToJSONSchema()
	}
	return out
}

// Validator checks raw JSON documents against a schema
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles s for validation
func NewValidator(s *Schema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.ToJSONSchema()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate returns nil when doc conforms, otherwise an error listing every violation
func (v *Validator) Validate(doc []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return fmt.Errorf("document does not match schema: %s", strings.Join(violations, "; "))
}

var (
	noteValidator     *Validator
	noteValidatorErr  error
	noteValidatorOnce sync.Once
)

// NoteValidator returns the shared validator for SOAPNote documents
func NoteValidator() (*Validator, error) {
	noteValidatorOnce.Do(func() {
		noteValidator, noteValidatorErr = NewValidator(SOAPNote())
	})
	return noteValidator, noteValidatorErr
}
