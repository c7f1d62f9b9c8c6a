// ABOUTME: Validation error shared by form controllers and services
// ABOUTME: Carries one message per offending UI field
package models

import "sort"

// ValidationError maps UI field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds an error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Error returns the message of the alphabetically first field so output is stable.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.Fields[keys[0]]
}
