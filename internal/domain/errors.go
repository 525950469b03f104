package domain

import (
	"errors"
	"strings"
)

// ErrNotFound marks lookups of records that do not exist.
var ErrNotFound = errors.New("not found")

// ErrStudentNotFound is returned for operations on an unknown student id.
var ErrStudentNotFound = &notFoundError{what: "Student"}

type notFoundError struct{ what string }

func (e *notFoundError) Error() string { return e.what + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

// FieldError describes one rejected input field.
type FieldError struct {
	// Loc is the path to the field, e.g. ["body", "subject"].
	Loc  []string
	Msg  string
	Type string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
