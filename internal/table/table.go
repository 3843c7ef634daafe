// Package table derives searchable, sortable and paginated table views from a
// record collection. Every view is a pure function of the rows it was built
// from, so nothing survives a collection change.
package table

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultPageSize is used when a query carries no page size.
const DefaultPageSize = 10

// Column describes one rendered column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Row is one rendered record.
type Row struct {
	ID    string
	Cells []string
}

// Rows is a rendered collection together with the generation of the
// collection it was built from.
type Rows struct {
	Headers    []string
	Items      []Row
	Generation uint64
}

// Build renders records through cols. id extracts the row identifier.
func Build[T any](records []T, cols []Column[T], id func(T) string, generation uint64) Rows {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	items := make([]Row, 0, len(records))
	for _, rec := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if c.Value != nil {
				cells[i] = c.Value(rec)
			}
		}
		row := Row{Cells: cells}
		if id != nil {
			row.ID = id(rec)
		}
		items = append(items, row)
	}
	return Rows{Headers: headers, Items: items, Generation: generation}
}

// Page is the result of applying a Query to Rows.
type Page struct {
	Headers    []string
	Items      []Row
	Query      Query
	Total      int
	Filtered   int
	Pages      int
	Generation uint64
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Query.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Query.Page < p.Pages }

// PrevPage returns the previous page number.
func (p Page) PrevPage() int { return p.Query.Page - 1 }

// NextPage returns the next page number.
func (p Page) NextPage() int { return p.Query.Page + 1 }

// Apply filters, sorts and paginates rows. The input is never modified.
func Apply(rows Rows, q Query) Page {
	q = q.normalize(len(rows.Headers))

	filtered := make([]Row, 0, len(rows.Items))
	needle := fold(strings.TrimSpace(q.Search))
	for _, row := range rows.Items {
		if needle == "" || matches(row, needle) {
			filtered = append(filtered, row)
		}
	}

	if q.SortColumn >= 0 {
		col := q.SortColumn
		sort.SliceStable(filtered, func(i, j int) bool {
			a, b := cell(filtered[i], col), cell(filtered[j], col)
			if q.SortDesc {
				return compareCells(b, a)
			}
			return compareCells(a, b)
		})
	}

	pages := (len(filtered) + q.PageSize - 1) / q.PageSize
	if pages == 0 {
		pages = 1
	}
	if q.Page > pages {
		q.Page = pages
	}
	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Headers:    rows.Headers,
		Items:      filtered[start:end],
		Query:      q,
		Total:      len(rows.Items),
		Filtered:   len(filtered),
		Pages:      pages,
		Generation: rows.Generation,
	}
}

// fold builds a fresh Caser per call; Casers are not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

func matches(row Row, needle string) bool {
	for _, c := range row.Cells {
		if strings.Contains(fold(c), needle) {
			return true
		}
	}
	return false
}

func cell(row Row, col int) string {
	if col < len(row.Cells) {
		return row.Cells[col]
	}
	return ""
}

// compareCells orders numerically when both cells are numbers.
func compareCells(a, b string) bool {
	if x, okA := parseNumber(a); okA {
		if y, okB := parseNumber(b); okB {
			return x < y
		}
	}
	return fold(a) < fold(b)
}
