// Package listing narrows a fetched record list with category and free-text
// filters and slices it into fixed-size pages.
package listing

import "strings"

const (
	// DefaultPageSize is used when a caller passes a non-positive page size.
	DefaultPageSize = 5
	// CategoryAll bypasses a category filter.
	CategoryAll = "all"
)

// PageSizes are the sizes offered by page-size selectors.
var PageSizes = []int{5, 10, 20, 50}

// Predicate reports whether a record should be kept.
type Predicate[T any] func(T) bool

// Filter keeps the records matching every predicate, preserving order. Nil
// predicates are ignored.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range preds {
			if p != nil && !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Category matches records whose field equals value, ignoring case. An empty
// value or "all" matches everything.
func Category[T any](value string, field func(T) string) Predicate[T] {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, CategoryAll) {
		return nil
	}
	return func(item T) bool {
		return strings.EqualFold(strings.TrimSpace(field(item)), value)
	}
}

// Search matches records where any of fields contains query, ignoring case.
// An empty query matches everything.
func Search[T any](query string, fields ...func(T) string) Predicate[T] {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	return func(item T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), query) {
				return true
			}
		}
		return false
	}
}

// Page is one window over a filtered list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	// Start and End are the 0-based half-open bounds of Items in the list.
	Start int `json:"start"`
	End   int `json:"end"`
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// TotalPages is max(1, ceil(n/pageSize)).
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate returns the 1-indexed page of items. Pages below 1 become 1 and
// pages past the end clamp to the last page, so a shrinking list never
// leaves the caller on an empty out-of-range page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	pages := TotalPages(total, pageSize)
	page = min(max(page, 1), pages)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	window := make([]T, end-start)
	copy(window, items[start:end])
	return Page[T]{
		Items:      window,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		Start:      start,
		End:        end,
	}
}

// NormalizePageSize snaps size to one of PageSizes, falling back to def.
func NormalizePageSize(size, def int) int {
	for _, s := range PageSizes {
		if s == size {
			return size
		}
	}
	if def <= 0 {
		return DefaultPageSize
	}
	return def
}
