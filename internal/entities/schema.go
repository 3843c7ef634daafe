// Package entities holds the per-entity configuration records the console
// instantiates its generic CRUD controller with.
package entities

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/stockdesk/internal/crud"
)

// FieldType selects the form input rendered for a field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
)

// Field binds one form input to a record attribute.
type Field[T any] struct {
	Name  string
	Label string
	Type  FieldType
	Get   func(T) string
	Set   func(*T, string) error
}

// Schema is everything the console needs to serve one entity page.
type Schema[T any] struct {
	// Path is where the console mounts the page ("/categories").
	Path   string
	Title  string
	Fields []Field[T]
	Config crud.Config[T]
	// InvoicePath, when set, links each row to a generated invoice.
	InvoicePath func(T) string
}

// FormField is a rendered form input.
type FormField struct {
	Name  string
	Label string
	Type  FieldType
	Value string
	Error string
}

// FormErrors maps form field names to messages.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	parts := make([]string, 0, len(e))
	for k, v := range e {
		parts = append(parts, k+": "+v)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Bind decodes a submitted form into a record. base supplies attributes the
// form does not carry, such as the identifier of the record being edited.
func (s Schema[T]) Bind(values url.Values, base T) (T, error) {
	record := base
	errs := FormErrors{}
	for _, f := range s.Fields {
		if f.Set == nil {
			continue
		}
		if err := f.Set(&record, values.Get(f.Name)); err != nil {
			errs[f.Name] = fmt.Sprintf("%s is not valid", f.Label)
		}
	}
	checked := record
	if s.Config.Trim != nil {
		checked = s.Config.Trim(record)
	}
	if err := validate.Struct(checked); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				name := s.fieldName(fe.Field())
				if _, exists := errs[name]; !exists {
					errs[name] = describe(s.label(name), fe)
				}
			}
		}
	}
	if len(errs) > 0 {
		return record, errs
	}
	return record, nil
}

// Form renders record for the edit modal.
func (s Schema[T]) Form(record T, errs FormErrors) []FormField {
	out := make([]FormField, 0, len(s.Fields))
	for _, f := range s.Fields {
		ff := FormField{Name: f.Name, Label: f.Label, Type: f.Type}
		if f.Get != nil {
			ff.Value = f.Get(record)
		}
		if errs != nil {
			ff.Error = errs[f.Name]
		}
		out = append(out, ff)
	}
	return out
}

// fieldName maps a Go struct field name reported by the validator to the
// form field name. Struct fields are named after their form field in
// CamelCase.
func (s Schema[T]) fieldName(structField string) string {
	want := strings.ToLower(structField)
	for _, f := range s.Fields {
		if strings.ReplaceAll(f.Name, "_", "") == want {
			return f.Name
		}
	}
	return want
}

func (s Schema[T]) label(name string) string {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Label
		}
	}
	return name
}

func describe(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return label + " must be at least " + fe.Param()
	case "gt":
		return label + " must be greater than " + fe.Param()
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	case "len":
		return label + " must be exactly " + fe.Param() + " characters"
	case "alpha":
		return label + " must contain letters only"
	default:
		return label + " is not valid"
	}
}
