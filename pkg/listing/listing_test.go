package listing

import (
	"net/url"
	"reflect"
	"strconv"
	"testing"
)

type record struct {
	ID     int
	Status string
	Name   string
}

func records(n int) []record {
	out := make([]record, n)
	for i := range out {
		status := "pending"
		if i%2 == 1 {
			status = "done"
		}
		out[i] = record{ID: i + 1, Status: status, Name: "record-" + strconv.Itoa(i+1)}
	}
	return out
}

func ids(rs []record) []int {
	out := make([]int, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestPaginateTwelveRecords(t *testing.T) {
	items := records(12)
	want := [][]int{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}, {11, 12}}
	for i, w := range want {
		p := Paginate(items, i+1, 5)
		if p.TotalPages != 3 || p.Total != 12 {
			t.Fatalf("page %d: unexpected totals %+v", i+1, p)
		}
		if got := ids(p.Items); !reflect.DeepEqual(got, w) {
			t.Fatalf("page %d: got %v want %v", i+1, got, w)
		}
	}

	over := Paginate(items, 4, 5)
	if over.Page != 3 || !reflect.DeepEqual(ids(over.Items), []int{11, 12}) {
		t.Fatalf("page past the end must clamp to the last page, got %+v", over)
	}
	if under := Paginate(items, -2, 5); under.Page != 1 || len(under.Items) != 5 {
		t.Fatalf("page below 1 must become 1, got %+v", under)
	}
}

func TestPaginatePageCountInvariant(t *testing.T) {
	for n := 0; n <= 40; n++ {
		for _, size := range []int{1, 2, 3, 5, 7, 10, 50} {
			p := Paginate(records(n), 1, size)
			want := max(1, (n+size-1)/size)
			if p.TotalPages != want {
				t.Fatalf("n=%d size=%d: total pages %d want %d", n, size, p.TotalPages, want)
			}
			last := Paginate(records(n), p.TotalPages, size)
			if n == 0 && len(last.Items) != 0 {
				t.Fatalf("empty list must yield an empty page")
			}
			if n > 0 && (len(last.Items) < 1 || len(last.Items) > size) {
				t.Fatalf("n=%d size=%d: last page has %d items", n, size, len(last.Items))
			}
		}
	}
}

func TestPaginateWindowsReproduceList(t *testing.T) {
	for n := 0; n <= 23; n++ {
		items := records(n)
		for _, size := range []int{1, 4, 5, 10} {
			var got []int
			first := Paginate(items, 1, size)
			for page := 1; page <= first.TotalPages; page++ {
				got = append(got, ids(Paginate(items, page, size).Items)...)
			}
			if want := ids(items); !reflect.DeepEqual(append([]int{}, got...), want) {
				t.Fatalf("n=%d size=%d: pages %v do not reproduce %v", n, size, got, want)
			}
		}
	}
}

func TestPaginateDefaultsPageSize(t *testing.T) {
	p := Paginate(records(7), 1, 0)
	if p.PageSize != DefaultPageSize || len(p.Items) != DefaultPageSize {
		t.Fatalf("expected default page size, got %+v", p)
	}
}

func TestFilterCategoryAndSearch(t *testing.T) {
	items := records(10)
	status := func(r record) string { return r.Status }
	name := func(r record) string { return r.Name }

	got := Filter(items, Category("DONE", status))
	if !reflect.DeepEqual(ids(got), []int{2, 4, 6, 8, 10}) {
		t.Fatalf("category filter: %v", ids(got))
	}
	if got := Filter(items, Category(CategoryAll, status)); len(got) != 10 {
		t.Fatalf("'all' must bypass the category filter")
	}
	got = Filter(items, Search("RECORD-1", name))
	if !reflect.DeepEqual(ids(got), []int{1, 10}) {
		t.Fatalf("search filter: %v", ids(got))
	}
	got = Filter(items, Category("pending", status), Search("record-1", name))
	if !reflect.DeepEqual(ids(got), []int{1}) {
		t.Fatalf("combined filter: %v", ids(got))
	}
}

func TestViewResetsPageOnFilterChange(t *testing.T) {
	items := records(30)
	v := NewView(5, func(r record) string { return r.Status }, func(r record) string { return r.Name })

	v.SetPage(3)
	if p := v.Apply(items); p.Page != 3 {
		t.Fatalf("expected page 3, got %d", p.Page)
	}
	v.SetCategory("done")
	if v.Page() != 1 {
		t.Fatalf("category change must reset page, got %d", v.Page())
	}
	v.SetPage(2)
	v.SetQuery("record")
	if v.Page() != 1 {
		t.Fatalf("query change must reset page, got %d", v.Page())
	}
	v.SetPage(2)
	v.SetPageSize(10)
	if v.Page() != 1 {
		t.Fatalf("page size change must reset page, got %d", v.Page())
	}
	p := v.Apply(items)
	if p.Page != 1 || p.Total != 15 || ids(p.Items)[0] != 2 {
		t.Fatalf("unexpected page after reset: %+v", p)
	}
}

func TestViewClampsWhenListShrinks(t *testing.T) {
	v := NewView[record](5, nil)
	v.SetPage(4)
	if p := v.Apply(records(20)); p.Page != 4 {
		t.Fatalf("expected page 4, got %d", p.Page)
	}
	p := v.Apply(records(8))
	if p.Page != 2 || v.Page() != 2 || len(p.Items) != 3 {
		t.Fatalf("expected clamp to page 2 of shrunk list, got %+v", p)
	}
}

func TestViewWhere(t *testing.T) {
	v := NewView[record](5, nil).Where(func(r record) bool { return r.ID > 8 })
	if p := v.Apply(records(10)); !reflect.DeepEqual(ids(p.Items), []int{9, 10}) {
		t.Fatalf("unexpected items: %v", ids(p.Items))
	}
}

func TestParseRequest(t *testing.T) {
	req := ParseRequest(url.Values{
		"category": {"confirmed"},
		"q":        {" jane "},
		"page":     {"3"},
		"pageSize": {"20"},
	}, 10)
	if req.Category != "confirmed" || req.Query != "jane" || req.Page != 3 || req.PageSize != 20 {
		t.Fatalf("unexpected request: %+v", req)
	}

	req = ParseRequest(url.Values{"page": {"-1"}, "pageSize": {"7"}}, 10)
	if req.Page != 1 || req.PageSize != 10 {
		t.Fatalf("invalid values must fall back, got %+v", req)
	}
}

func TestApplyRequestKeepsRequestedPage(t *testing.T) {
	v := NewView(5, func(r record) string { return r.Status })
	p := ApplyRequest(v, Request{Category: "pending", Page: 2, PageSize: 5}, records(20))
	if p.Page != 2 || !reflect.DeepEqual(ids(p.Items), []int{11, 13, 15, 17, 19}) {
		t.Fatalf("unexpected page: %+v", p)
	}
}
