package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound            = errors.New("project not found")
	ErrUnavailable         = errors.New("project store unavailable")
	ErrUnauthenticated     = errors.New("you must be logged in to add a project")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidFlag         = errors.New("invalid query flag")
	ErrDuplicateSubmission = errors.New("this submission is already being processed")
	ErrUpload              = errors.New("could not upload project images")
	ErrSave                = errors.New("could not save the project")
)

// ValidationError carries every violated constraint keyed by form field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
