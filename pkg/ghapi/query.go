package ghapi

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents common query parameters of list endpoints.
type QueryParams struct {
	Page      int
	PerPage   int
	Sort      string
	Direction string
	Type      string
	// Query is the search expression sent as "q" to search endpoints.
	Query   string
	Filters map[string][]string
}

// NewQueryParams creates new query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// ToValues converts query parameters to url.Values. Filter values are joined
// with commas.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}

	if q.Direction != "" {
		values.Set("direction", q.Direction)
	}

	if q.Type != "" {
		values.Set("type", q.Type)
	}

	if q.Query != "" {
		values.Set("q", q.Query)
	}

	for key, vals := range q.Filters {
		if len(vals) > 0 {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	return values
}

// Encode returns the URL-encoded query string.
func (q *QueryParams) Encode() string {
	return q.ToValues().Encode()
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithSort sets the sort field.
func (q *QueryParams) WithSort(sort string) *QueryParams {
	q.Sort = sort

	return q
}

// WithDirection sets the sort direction ("asc" or "desc").
func (q *QueryParams) WithDirection(direction string) *QueryParams {
	q.Direction = direction

	return q
}

// WithType sets the type filter.
func (q *QueryParams) WithType(typ string) *QueryParams {
	q.Type = typ

	return q
}

// WithQuery sets the search expression.
func (q *QueryParams) WithQuery(query string) *QueryParams {
	q.Query = query

	return q
}

// WithFilter appends values to a filter.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// PathWithQuery appends params to path, which may already carry a query.
func PathWithQuery(path string, params *QueryParams) string {
	if params == nil {
		return path
	}

	encoded := params.Encode()
	if encoded == "" {
		return path
	}

	if strings.Contains(path, "?") {
		return path + "&" + encoded
	}

	return path + "?" + encoded
}
