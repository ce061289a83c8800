package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
)

// JSON is a subset of JSON Schema sufficient to describe plugin configuration.
type JSON struct {
	Type        string          `json:"type,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
	Default     any             `json:"default,omitempty"`
	MinLength   *int            `json:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
}

// Any accepts any value.
func Any() JSON {
	return JSON{}
}

// String creates a schema for a string.
func String() JSON {
	return JSON{Type: "string"}
}

// StringWithDesc creates a schema for a string with a description.
func StringWithDesc(desc string) JSON {
	return JSON{
		Type:        "string",
		Description: desc,
	}
}

// Number creates a schema for a number.
func Number() JSON {
	return JSON{Type: "number"}
}

// Bool creates a schema for a boolean.
func Bool() JSON {
	return JSON{Type: "boolean"}
}

// Object creates a schema for an object with the given properties and
// required keys.
func Object(properties map[string]JSON, required ...string) JSON {
	return JSON{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// Enum creates a schema that accepts only the listed values.
func Enum(values ...any) JSON {
	return JSON{Enum: values}
}

// Validate reports whether value conforms to the schema.
func (s JSON) Validate(value any) error {
	if value == nil {
		if s.Type != "" || len(s.Enum) > 0 {
			return fmt.Errorf("expected %s, got nil", s.describe())
		}
		return nil
	}

	if len(s.Enum) > 0 {
		if err := s.validateEnum(value); err != nil {
			return err
		}
	}

	switch s.Type {
	case "":
		return nil
	case "string":
		return s.validateString(value)
	case "number":
		return s.validateNumber(value)
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
		return nil
	case "object":
		return s.validateObject(value)
	}
	return fmt.Errorf("unsupported schema type %q", s.Type)
}

func (s JSON) describe() string {
	if s.Type != "" {
		return s.Type
	}
	return fmt.Sprintf("one of %v", s.Enum)
}

func (s JSON) validateString(value any) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}

	if s.MinLength != nil && len(str) < *s.MinLength {
		return fmt.Errorf("string length %d is less than minimum %d", len(str), *s.MinLength)
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		return fmt.Errorf("string length %d is greater than maximum %d", len(str), *s.MaxLength)
	}

	if s.Pattern != "" {
		matched, err := regexp.MatchString(s.Pattern, str)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("string does not match pattern %s", s.Pattern)
		}
	}
	return nil
}

func (s JSON) validateNumber(value any) error {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	}
	return fmt.Errorf("expected number, got %T", value)
}

func (s JSON) validateObject(value any) error {
	obj, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}

	for _, req := range s.Required {
		if v, exists := obj[req]; !exists || v == nil {
			return fmt.Errorf("required field %s is missing", req)
		}
	}

	// Sorted so the first reported error is stable.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		propSchema, exists := s.Properties[key]
		if !exists {
			continue
		}
		if err := propSchema.Validate(obj[key]); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}
	return nil
}

func (s JSON) validateEnum(value any) error {
	for _, allowed := range s.Enum {
		if reflect.DeepEqual(value, allowed) {
			return nil
		}
	}
	return fmt.Errorf("value %v is not one of the allowed values: %v", value, s.Enum)
}
