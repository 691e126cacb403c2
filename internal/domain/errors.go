package domain

import (
	"errors"
	"strings"
)

// Store errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrTaskNotFound     = errors.New("task not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Task errors
var (
	ErrNoFields      = errors.New("no valid fields provided for update")
	ErrInvalidFilter = errors.New("invalid filter")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when one or more input fields fail validation.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FilterError is a rejected list query parameter. It matches
// ErrInvalidFilter with errors.Is.
type FilterError struct {
	Param   string
	Message string
}

func (e *FilterError) Error() string {
	return e.Message
}

func (e *FilterError) Is(target error) bool {
	return target == ErrInvalidFilter
}
