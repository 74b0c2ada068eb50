package serializer

import (
	"errors"
	"fmt"
)

// Common serializer errors.
var (
	// ErrNilBuilder indicates that no field builder was supplied.
	ErrNilBuilder = errors.New("field builder is nil")

	// ErrNilInstance indicates that the instance to represent is nil.
	ErrNilInstance = errors.New("instance is nil")

	// ErrNotStruct indicates that a struct builder was given a non-struct type.
	ErrNotStruct = errors.New("type is not a struct")

	// ErrTypeMismatch indicates that an instance does not match the type
	// the field mapping was built for.
	ErrTypeMismatch = errors.New("instance type mismatch")

	// ErrDuplicateField indicates that a builder produced the same field name twice.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrComputedField indicates that a computed field function failed.
	ErrComputedField = errors.New("computed field failed")
)

// FieldError reports a failure to read a single field.
type FieldError struct {
	Field string
	Cause error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Cause)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *FieldError) Is(target error) bool {
	_, ok := target.(*FieldError)
	return ok
}
