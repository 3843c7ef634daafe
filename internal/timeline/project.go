// Package timeline projects a serial-number stock trace into the fixed set of
// sections shown on the stock lookup page.
package timeline

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
)

// Placeholder is rendered for every missing, null or empty leaf.
const Placeholder = "N/A"

// Field is one labelled value inside a section.
type Field struct {
	Label string
	Value string
}

// Section is a titled group of fields.
type Section struct {
	Title  string
	Fields []Field
}

type fieldSpec struct {
	label string
	code  *gojq.Code
}

type sectionSpec struct {
	title  string
	fields []fieldSpec
}

// layout is the fixed section order. Paths are resolved against the trace
// object, unwrapping an optional {"data": ...} envelope first.
var layout = []sectionSpec{
	{title: "Product", fields: []fieldSpec{
		field("Serial number", ".serial_number"),
		field("Product", ".product.name"),
		field("Model", ".product.model"),
		field("Category", ".product.category"),
	}},
	{title: "Purchase", fields: []fieldSpec{
		field("Invoice", ".purchase.invoice_no"),
		field("Supplier", ".purchase.supplier"),
		field("Country", ".purchase.country"),
		field("Unit price", ".purchase.unit_price"),
		field("Purchase date", ".purchase.purchase_date"),
	}},
	{title: "Stock", fields: []fieldSpec{
		field("Location", ".stock.location"),
		field("Quantity", ".stock.quantity"),
		field("Status", ".stock.status"),
		field("Updated", ".stock.updated_at"),
	}},
	{title: "Sale", fields: []fieldSpec{
		field("Customer", ".sale.customer"),
		field("Invoice", ".sale.invoice_no"),
		field("Sold date", ".sale.sold_date"),
	}},
	{title: "Return", fields: []fieldSpec{
		field("Reason", ".return.reason"),
		field("Quantity", ".return.quantity"),
		field("Return date", ".return.return_date"),
	}},
}

func field(label, path string) fieldSpec {
	query, err := gojq.Parse(fmt.Sprintf("try ((if type == \"object\" and has(\"data\") then .data else . end) | %s) catch null", path))
	if err != nil {
		panic(fmt.Sprintf("timeline: parse %q: %v", path, err))
	}
	code, err := gojq.Compile(query)
	if err != nil {
		panic(fmt.Sprintf("timeline: compile %q: %v", path, err))
	}
	return fieldSpec{label: label, code: code}
}

// Titles returns the section titles in display order.
func Titles() []string {
	out := make([]string, len(layout))
	for i, s := range layout {
		out[i] = s.title
	}
	return out
}

// Project maps a decoded lookup response onto the fixed sections. It never
// fails: anything it cannot resolve renders as Placeholder.
func Project(response any) []Section {
	input := normalize(response)
	sections := make([]Section, 0, len(layout))
	for _, spec := range layout {
		section := Section{Title: spec.title, Fields: make([]Field, 0, len(spec.fields))}
		for _, f := range spec.fields {
			section.Fields = append(section.Fields, Field{Label: f.label, Value: resolve(f.code, input)})
		}
		sections = append(sections, section)
	}
	return sections
}

// ProjectJSON decodes body and projects it. Undecodable bodies project to
// all-placeholder sections.
func ProjectJSON(body []byte) []Section {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		v = nil
	}
	return Project(v)
}

func resolve(code *gojq.Code, input any) string {
	iter := code.Run(input)
	v, ok := iter.Next()
	if !ok {
		return Placeholder
	}
	if _, isErr := v.(error); isErr {
		return Placeholder
	}
	return format(v)
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return Placeholder
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
		return Placeholder
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case *big.Int:
		return t.String()
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	default:
		return Placeholder
	}
}

// normalize converts typed values into the JSON shapes gojq operates on.
func normalize(v any) any {
	switch v.(type) {
	case nil, map[string]any, []any:
		return v
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
