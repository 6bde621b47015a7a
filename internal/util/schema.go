package util

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Field describes one parameter derived from a struct field.
type Field struct {
	Name        string
	Description string
	Required    bool
}

// FieldsFromStruct derives a parameter list from a Go struct using reflection.
// The json tag names the parameter, the description tag documents it, and a
// field is required unless it is a pointer or tagged omitempty.
func FieldsFromStruct(structType any) ([]Field, error) {
	t := reflect.TypeOf(structType)
	if t == nil {
		return nil, fmt.Errorf("cannot derive parameters from nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot derive parameters from %s: not a struct", t)
	}

	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
		}

		fields = append(fields, Field{
			Name:        fieldName,
			Description: field.Tag.Get("description"),
			Required:    !hasOmitEmpty(jsonTag) && !isPointer(field.Type),
		})
	}

	return fields, nil
}

// ValidateRequired checks that every required name is present in params.
func ValidateRequired(params map[string]any, required []string) error {
	for _, name := range required {
		if _, exists := params[name]; !exists {
			return &ValidationError{
				Field:   name,
				Message: "required field is missing",
			}
		}
	}

	return nil
}

// hasOmitEmpty checks if a JSON tag has the "omitempty" option.
func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

// isPointer checks if a type is a pointer.
func isPointer(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr
}
