package service

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthorized means no authenticated user was supplied.
	ErrUnauthorized = errors.New("authentication required")
	// ErrNotFoundOrForbidden covers both a missing task and a task owned by
	// someone else, so callers cannot probe for other users' data.
	ErrNotFoundOrForbidden = errors.New("task not found")
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// FieldError is one problem with one submitted form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the field errors of a rejected form, in the order
// the rules were checked.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field has at least one error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// For returns the messages recorded for field.
func (e *ValidationError) For(field string) []string {
	var out []string
	for _, f := range e.Fields {
		if f.Field == field {
			out = append(out, f.Message)
		}
	}
	return out
}

// OrNil returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
