package listing

// View is the filter and page state of one list for the lifetime of a
// screen or request. Changing the category, the query or the page size
// always sends the view back to page 1.
type View[T any] struct {
	category string
	query    string
	page     int
	pageSize int

	categoryField func(T) string
	searchFields  []func(T) string
	extra         []Predicate[T]
}

// NewView builds a view. categoryField may be nil when the list has no
// category selector.
func NewView[T any](pageSize int, categoryField func(T) string, searchFields ...func(T) string) *View[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View[T]{
		category:      CategoryAll,
		page:          1,
		pageSize:      pageSize,
		categoryField: categoryField,
		searchFields:  searchFields,
	}
}

// Where adds a fixed predicate applied before the category and query filters.
func (v *View[T]) Where(p Predicate[T]) *View[T] {
	if p != nil {
		v.extra = append(v.extra, p)
	}
	return v
}

func (v *View[T]) SetCategory(category string) {
	if category == "" {
		category = CategoryAll
	}
	v.category = category
	v.page = 1
}

func (v *View[T]) SetQuery(query string) {
	v.query = query
	v.page = 1
}

func (v *View[T]) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.pageSize = size
	v.page = 1
}

func (v *View[T]) SetPage(page int) {
	v.page = max(page, 1)
}

func (v *View[T]) Category() string { return v.category }
func (v *View[T]) Query() string    { return v.query }
func (v *View[T]) Page() int        { return v.page }
func (v *View[T]) PageSize() int    { return v.pageSize }

// Apply filters items and returns the current page. The view's page is
// updated to the clamped value that was actually shown.
func (v *View[T]) Apply(items []T) Page[T] {
	preds := append([]Predicate[T](nil), v.extra...)
	if v.categoryField != nil {
		preds = append(preds, Category(v.category, v.categoryField))
	}
	if len(v.searchFields) > 0 {
		preds = append(preds, Search(v.query, v.searchFields...))
	}
	p := Paginate(Filter(items, preds...), v.page, v.pageSize)
	v.page = p.Page
	return p
}
