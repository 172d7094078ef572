package domain

import "strings"

// ValidationError reports rule violations found before any write was
// accepted. Safe to retry with corrected input; persisted state is unchanged.
type ValidationError struct {
	Errors []string
}

func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}

// PersistenceError reports a write the store rejected after the core's own
// validation had passed: constraint violations, races against concurrently
// accepted writes, transient store failures.
type PersistenceError struct {
	Errors []string
}

func NewPersistenceError(errs ...string) *PersistenceError {
	return &PersistenceError{Errors: errs}
}

func (e *PersistenceError) Error() string {
	return strings.Join(e.Errors, ", ")
}
