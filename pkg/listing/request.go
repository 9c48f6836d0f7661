package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Request carries list parameters decoded from a query string.
type Request struct {
	Category string
	Query    string
	Page     int
	PageSize int
}

// ParseRequest reads category, q, page and pageSize. Unknown page sizes fall
// back to defPageSize; a missing or invalid page is 1.
func ParseRequest(values url.Values, defPageSize int) Request {
	req := Request{
		Category: strings.TrimSpace(values.Get("category")),
		Query:    strings.TrimSpace(values.Get("q")),
		Page:     1,
		PageSize: NormalizePageSize(defPageSize, DefaultPageSize),
	}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		req.Page = n
	}
	if n, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		req.PageSize = NormalizePageSize(n, req.PageSize)
	}
	return req
}

// ApplyRequest configures v from req and returns the resulting page of
// items. The page is set last so the resets done by the filter setters do
// not discard it.
func ApplyRequest[T any](v *View[T], req Request, items []T) Page[T] {
	v.SetCategory(req.Category)
	v.SetQuery(req.Query)
	v.SetPageSize(req.PageSize)
	v.SetPage(req.Page)
	return v.Apply(items)
}
