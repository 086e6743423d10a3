// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coerce obtains schema-valid structured records from model output.
// Each target record declares an explicit field-descriptor table; no runtime
// reflection is involved in rendering schemas, validating output, or
// synthesizing defaults.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind is the declared type of a schema field.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	StringList
	Enum
)

// Field describes one field of a target record.
type Field struct {
	Name        string
	Kind        Kind
	Description string

	// Choices enumerates the allowed values for Enum fields; the first
	// choice doubles as the default.
	Choices []string

	// Min and Max bound numeric fields. Both zero means unbounded.
	Min, Max float64
}

// Schema is the explicit descriptor table for a target record.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// JSONSchema renders the schema as a JSON-schema document for the model's
// native structured-output mode. Every field is required and extra properties
// are rejected.
func (s Schema) JSONSchema() json.RawMessage {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, f := range s.Fields {
		prop := map[string]any{}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		switch f.Kind {
		case String:
			prop["type"] = "string"
		case Int:
			prop["type"] = "integer"
			if f.Min != 0 || f.Max != 0 {
				prop["minimum"] = f.Min
				prop["maximum"] = f.Max
			}
		case Float:
			prop["type"] = "number"
			if f.Min != 0 || f.Max != 0 {
				prop["minimum"] = f.Min
				prop["maximum"] = f.Max
			}
		case Bool:
			prop["type"] = "boolean"
		case StringList:
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		case Enum:
			prop["type"] = "string"
			prop["enum"] = f.Choices
		}
		props[f.Name] = prop
		required = append(required, f.Name)
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		// All inputs are plain maps of marshalable values.
		panic(fmt.Sprintf("rendering JSON schema for %s: %v", s.Name, err))
	}
	return raw
}

// Validate checks a parsed JSON object against the schema. Missing or extra
// fields are errors, as are values of the wrong kind or out of bounds.
func (s Schema) Validate(obj map[string]any) error {
	declared := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		declared[f.Name] = f
	}

	for name := range obj {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("schema %s: unexpected field %q", s.Name, name)
		}
	}

	for _, f := range s.Fields {
		v, ok := obj[f.Name]
		if !ok {
			return fmt.Errorf("schema %s: missing field %q", s.Name, f.Name)
		}
		if err := checkKind(f, v); err != nil {
			return fmt.Errorf("schema %s: field %q: %w", s.Name, f.Name, err)
		}
	}
	return nil
}

func checkKind(f Field, v any) error {
	switch f.Kind {
	case String:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case Int:
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return fmt.Errorf("expected integer, got %v (%T)", v, v)
		}
		if err := checkBounds(f, n); err != nil {
			return err
		}
	case Float:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %T", v)
		}
		if err := checkBounds(f, n); err != nil {
			return err
		}
	case Bool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
	case StringList:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected array of strings, got %T", v)
		}
		for i, it := range items {
			if _, ok := it.(string); !ok {
				return fmt.Errorf("expected string at index %d, got %T", i, it)
			}
		}
	case Enum:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		for _, c := range f.Choices {
			if str == c {
				return nil
			}
		}
		return fmt.Errorf("value %q not among %v", str, f.Choices)
	}
	return nil
}

func checkBounds(f Field, n float64) error {
	if f.Min == 0 && f.Max == 0 {
		return nil
	}
	if n < f.Min || n > f.Max {
		return fmt.Errorf("value %v outside [%v, %v]", n, f.Min, f.Max)
	}
	return nil
}

// placeholder is the sentinel for synthesized string values.
const placeholder = "unavailable"

// Default synthesizes a minimally valid record: sentinel strings, mid-range
// numbers, false booleans, the first enum choice, and singleton placeholder
// lists. Used when every coercion strategy is exhausted so the workflow can
// still advance.
func (s Schema) Default() map[string]any {
	obj := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Kind {
		case String:
			obj[f.Name] = placeholder
		case Int:
			obj[f.Name] = math.Trunc((f.Min + f.Max) / 2)
		case Float:
			obj[f.Name] = (f.Min + f.Max) / 2
		case Bool:
			obj[f.Name] = false
		case StringList:
			obj[f.Name] = []any{placeholder}
		case Enum:
			if len(f.Choices) > 0 {
				obj[f.Name] = f.Choices[0]
			} else {
				obj[f.Name] = placeholder
			}
		}
	}
	return obj
}

// PromptInstructions renders the natural-language schema description appended
// to the final user message in the prompt-engineered fallback.
func (s Schema) PromptInstructions() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object containing exactly these fields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %q (%s)", f.Name, kindName(f))
		if f.Description != "" {
			fmt.Fprintf(&b, ": %s", f.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("Do not include any text outside the JSON object.")
	return b.String()
}

func kindName(f Field) string {
	switch f.Kind {
	case String:
		return "string"
	case Int:
		return "integer"
	case Float:
		return "number"
	case Bool:
		return "boolean"
	case StringList:
		return "array of strings"
	case Enum:
		return "one of: " + strings.Join(f.Choices, " | ")
	}
	return "string"
}

// decode converts a validated object into the target record type via a JSON
// round-trip.
func decode[T any](obj map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(obj)
	if err != nil {
		return out, fmt.Errorf("re-marshaling record: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding record: %w", err)
	}
	return out, nil
}
