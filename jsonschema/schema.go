package jsonschema

import (
	"fmt"

	"github.com/reoring/goform/formdef"
)

// Draft is the $schema URI written on exported root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Schema string `json:"$schema,omitempty"`
	Title  string `json:"title,omitempty"`

	// Core
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Boolean
	Const any `json:"const,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
}

// FromDefinition exports the values a form submits: excluded fields are left
// out and conditional rules are not represented.
func FromDefinition(d formdef.Definition) (*Schema, error) {
	root := &Schema{
		Schema:               Draft,
		Title:                d.Form,
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: false,
	}
	for _, f := range d.Fields {
		if f.Exclude {
			continue
		}
		s, required, err := fieldSchema(f)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s.%s: %w", d.Form, f.Name, err)
		}
		root.Properties[f.Name] = s
		if required && f.When == nil {
			root.Required = append(root.Required, f.Name)
		}
	}
	return root, nil
}

func fieldSchema(f formdef.Field) (*Schema, bool, error) {
	s := &Schema{Title: f.Label, Type: "string"}
	switch {
	case f.Control == formdef.ControlChoice:
		s.Type = "boolean"
	case f.Number:
		s.Type = "number"
	case f.Control == formdef.ControlOTP:
		s.MaxLength = intPtr(f.Length)
	}
	if f.Type == "email" {
		s.Format = "email"
	}
	required := false
	for _, r := range f.Rules {
		switch r.Name {
		case "required":
			required = true
		case "checked":
			required = true
			s.Const = true
		case "email":
			s.Format = "email"
		case "digits":
			s.Pattern = "^[0-9]*$"
		case "min_length", "max_length", "length":
			n, ok := r.Arg.(int)
			if !ok {
				return nil, false, fmt.Errorf("%s needs an integer", r.Name)
			}
			if r.Name != "max_length" {
				s.MinLength = intPtr(n)
			}
			if r.Name != "min_length" {
				s.MaxLength = intPtr(n)
			}
		case "pattern":
			if p, ok := r.Arg.(string); ok {
				s.Pattern = "^(?:" + p + ")$"
			}
		case "one_of":
			list, _ := r.Arg.([]any)
			s.Enum = append(s.Enum, list...)
		case "min", "max":
			var v float64
			switch n := r.Arg.(type) {
			case int:
				v = float64(n)
			case float64:
				v = n
			default:
				return nil, false, fmt.Errorf("%s needs a number", r.Name)
			}
			if r.Name == "min" {
				s.Minimum = &v
			} else {
				s.Maximum = &v
			}
		}
	}
	return s, required, nil
}

func intPtr(n int) *int { return &n }
