package entities

import (
	"net/url"
	"strconv"
	"strings"
)

func text[T any](name, label string, ptr func(*T) *string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Type:  FieldText,
		Get:   func(r T) string { return *ptr(&r) },
		Set: func(r *T, v string) error {
			*ptr(r) = v
			return nil
		},
	}
}

func number[T any](name, label string, ptr func(*T) *Number) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Type:  FieldNumber,
		Get: func(r T) string {
			n := *ptr(&r)
			if n == 0 {
				return ""
			}
			return n.String()
		},
		Set: func(r *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ptr(r) = 0
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*ptr(r) = Number(f)
			return nil
		},
	}
}

func date[T any](name, label string, ptr func(*T) *Date) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Type:  FieldDate,
		Get:   func(r T) string { return ptr(&r).String() },
		Set: func(r *T, v string) error {
			d, err := ParseDate(v)
			if err != nil {
				return err
			}
			// The form only carries the calendar date; keep the stored
			// timestamp when the day is unchanged.
			if d.SameDay(*ptr(r)) {
				return nil
			}
			*ptr(r) = d
			return nil
		},
	}
}

func trimAll(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

// invoiceLink is the console route serving the generated invoice PDF.
func invoiceLink(invoiceNo string) string {
	if invoiceNo == "" {
		return ""
	}
	return "/invoices/" + url.PathEscape(invoiceNo) + "/pdf"
}
