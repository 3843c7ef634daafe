package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is reported for 404 responses.
var ErrNotFound = errors.New("gateway: resource not found")

// TransientError is a failed read: transport failure or a non-2xx status.
type TransientError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("gateway: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransientError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return e.Err
}

// FieldError holds the messages reported for one form field.
type FieldError struct {
	Field    string
	Messages []string
}

// First returns the first message, or "" when none was sent.
func (f FieldError) First() string {
	for _, m := range f.Messages {
		if strings.TrimSpace(m) != "" {
			return m
		}
	}
	return ""
}

// ValidationError is a structured 422 rejection.
type ValidationError struct {
	Message string
	// Fields preserves the order in which the gateway listed the fields.
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "gateway: validation failed: " + e.Message
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.First())
		}
		return "gateway: validation failed: " + strings.Join(parts, "; ")
	}
	return "gateway: validation failed"
}

// MutationError is any create, update or delete failure without a structured
// validation body.
type MutationError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("gateway: %s %s: %s", e.Method, e.Path, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("gateway: %s %s: status %d", e.Method, e.Path, e.Status)
	default:
		return fmt.Sprintf("gateway: %s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *MutationError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return e.Err
}
