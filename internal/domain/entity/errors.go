package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no article matches a lookup.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput matches every *ValidationError under errors.Is.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
