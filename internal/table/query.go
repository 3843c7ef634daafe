package table

import (
	"net/url"
	"strconv"
	"strings"
)

// Query holds the table tooling state carried in the page URL.
type Query struct {
	Search     string
	SortColumn int
	SortDesc   bool
	Page       int
	PageSize   int
}

// ParseQuery reads search, sort, dir, page and limit parameters.
func ParseQuery(values url.Values) Query {
	q := Query{
		Search:     values.Get("search"),
		SortColumn: -1,
		SortDesc:   values.Get("dir") == "desc",
	}
	if col, err := strconv.Atoi(values.Get("sort")); err == nil {
		q.SortColumn = col
	}
	q.Page, _ = strconv.Atoi(values.Get("page"))
	q.PageSize, _ = strconv.Atoi(values.Get("limit"))
	return q
}

// Values encodes q back into URL parameters, overriding page.
func (q Query) Values(page int) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortColumn >= 0 {
		v.Set("sort", strconv.Itoa(q.SortColumn))
		if q.SortDesc {
			v.Set("dir", "desc")
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if q.PageSize > 0 && q.PageSize != DefaultPageSize {
		v.Set("limit", strconv.Itoa(q.PageSize))
	}
	return v
}

// SortLink returns the query string that sorts by col, toggling direction
// when col is already the active sort column.
func (q Query) SortLink(col int) string {
	next := q
	next.SortDesc = q.SortColumn == col && !q.SortDesc
	next.SortColumn = col
	return next.Values(1).Encode()
}

// PageLink returns the query string for page.
func (q Query) PageLink(page int) string {
	return q.Values(page).Encode()
}

func (q Query) normalize(columns int) Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.SortColumn >= columns {
		q.SortColumn = -1
	}
	if q.SortColumn < 0 {
		q.SortColumn = -1
	}
	return q
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
