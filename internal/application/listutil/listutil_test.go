package listutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testViewConfig() ViewConfig {
	return ViewConfig{
		Name: "test",
		Fields: []FieldDescriptor{
			Categorical("nome", "Nome").InSearch(),
			Categorical("cidade", "Cidade").Normalized(),
			Numeric("idade", "Idade").WithLabels(YearsLabel),
			Date("created_at", "Data"),
		},
		Filters:     []string{"cidade", "idade"},
		Sorts:       []SortOption{{Field: "created_at", Label: "Data"}, {Field: "nome", Label: "Nome"}, {Field: "idade", Label: "Idade"}},
		DefaultSort: "created_at",
		DefaultDir:  DirDesc,
	}
}

// TestParseListParams_Defaults verifies default params when no query values provided.
func TestParseListParams_Defaults(t *testing.T) {
	lp := ParseListParams(url.Values{}, testViewConfig())
	if lp.Page != 1 {
		t.Errorf("expected page 1, got %d", lp.Page)
	}
	if lp.PerPage != DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", DefaultPerPage, lp.PerPage)
	}
	if lp.Sort != "created_at" || lp.Dir != DirDesc {
		t.Errorf("expected default sort created_at desc, got %s %s", lp.Sort, lp.Dir)
	}
	if len(lp.Filters) != 0 {
		t.Errorf("expected no filters, got %v", lp.Filters)
	}
}

// TestParseListParams_Valid verifies correct parsing of valid page, per_page and sort values.
func TestParseListParams_Valid(t *testing.T) {
	q := url.Values{"page": {"3"}, "per_page": {"50"}, "sort": {"nome"}, "dir": {"asc"}, "q": {"  ana "}}
	lp := ParseListParams(q, testViewConfig())
	if lp.Page != 3 {
		t.Errorf("expected page 3, got %d", lp.Page)
	}
	if lp.PerPage != 50 {
		t.Errorf("expected per_page 50, got %d", lp.PerPage)
	}
	if lp.Sort != "nome" || lp.Dir != DirAsc {
		t.Errorf("expected sort nome asc, got %s %s", lp.Sort, lp.Dir)
	}
	if lp.Search != "ana" {
		t.Errorf("expected trimmed search 'ana', got %q", lp.Search)
	}
}

// TestParseListParams_InvalidValues verifies fallbacks for out-of-range values.
func TestParseListParams_InvalidValues(t *testing.T) {
	tests := []struct {
		name        string
		q           url.Values
		wantPage    int
		wantPerPage int
		wantSort    string
		wantDir     string
	}{
		{"perPageNotAllowed", url.Values{"per_page": {"25"}}, 1, DefaultPerPage, "created_at", DirDesc},
		{"negativePage", url.Values{"page": {"-1"}}, 1, DefaultPerPage, "created_at", DirDesc},
		{"disallowedColumn", url.Values{"sort": {"senha"}}, 1, DefaultPerPage, "created_at", DirDesc},
		{"invalidDir", url.Values{"sort": {"nome"}, "dir": {"DROP TABLE"}}, 1, DefaultPerPage, "nome", DirAsc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lp := ParseListParams(tt.q, testViewConfig())
			if lp.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", lp.Page, tt.wantPage)
			}
			if lp.PerPage != tt.wantPerPage {
				t.Errorf("PerPage: got %d, want %d", lp.PerPage, tt.wantPerPage)
			}
			if lp.Sort != tt.wantSort {
				t.Errorf("Sort: got %q, want %q", lp.Sort, tt.wantSort)
			}
			if lp.Dir != tt.wantDir {
				t.Errorf("Dir: got %q, want %q", lp.Dir, tt.wantDir)
			}
		})
	}
}

// TestParseFilterParams verifies multi-select extraction from repeated and comma separated values.
func TestParseFilterParams(t *testing.T) {
	q := url.Values{
		"cidade":  {"Osório", " Porto Alegre, RS ", ""},
		"idade":   {" "},
		"unknown": {"x"},
	}
	got := ParseFilterParams(q, []string{"cidade", "idade"})
	want := map[string][]string{"cidade": {"Osório", "Porto Alegre, RS"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFilterParams mismatch (-want +got):\n%s", diff)
	}
}

// TestParseListParams_CommaOptionRoundTrip verifies an option whose value contains a
// comma can be selected through the query string and still matches its records.
func TestParseListParams_CommaOptionRoundTrip(t *testing.T) {
	cfg := testViewConfig()
	v := NewView(cfg, nil)
	defer v.Close()
	records := []Record{
		{"id": "1", "nome": "Ana", "cidade": "Porto Alegre, RS"},
		{"id": "2", "nome": "Bia", "cidade": "Porto Alegre"},
		{"id": "3", "nome": "Caio", "cidade": "RS"},
	}
	if err := v.Load(context.Background(), &stubFetcher{records: records}); err != nil {
		t.Fatal(err)
	}

	var value string
	for _, o := range v.Apply(FilterState{}).Options["cidade"] {
		if strings.Contains(o.Value, ",") {
			value = o.Value
		}
	}
	if value == "" {
		t.Fatal("no option carries the comma spelling")
	}

	q := url.Values{}
	q.Add("cidade", value)
	res := v.Apply(ParseListParams(q, cfg).State())
	if res.Matched != 1 || res.Rows[0].ID() != "1" {
		t.Errorf("matched %d rows %v, want only record 1", res.Matched, res.Rows)
	}
}

// TestListParams_State verifies conversion into a FilterState.
func TestListParams_State(t *testing.T) {
	q := url.Values{"cidade": {"Osório"}, "q": {"bia"}, "sort": {"idade"}, "dir": {"desc"}}
	state := ParseListParams(q, testViewConfig()).State()
	want := FilterState{
		Selected: map[string][]string{"cidade": {"Osório"}},
		Search:   "bia",
		Sort:     "idade",
		Dir:      DirDesc,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("State mismatch (-want +got):\n%s", diff)
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, 1, 20, 0},
		{"page2", 2, 20, 85, 5, 2, 21, 40, 20},
		{"lastPage", 5, 20, 85, 5, 5, 81, 85, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, 81, 85, 80},
		{"emptyList", 1, 20, 0, 1, 1, 0, 0, 0},
		{"exactFit", 1, 10, 10, 1, 1, 1, 10, 0},
		{"singleRow", 1, 20, 1, 1, 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

// TestPageInfo_Paginate verifies row slicing for first, last and out-of-range pages.
func TestPageInfo_Paginate(t *testing.T) {
	rows := make([]Record, 12)
	for i := range rows {
		rows[i] = Record{"id": i}
	}

	if got := NewPageInfo(1, 5, 12).Paginate(rows); len(got) != 5 || got[0]["id"] != 0 {
		t.Errorf("page 1: got %d rows starting %v", len(got), got[0]["id"])
	}
	if got := NewPageInfo(3, 5, 12).Paginate(rows); len(got) != 2 || got[0]["id"] != 10 {
		t.Errorf("page 3: got %d rows", len(got))
	}
	if got := (PageInfo{Page: 9, PerPage: 5, Total: 12}).Paginate(rows); len(got) != 0 {
		t.Errorf("page 9: expected empty page, got %d rows", len(got))
	}
}

// TestPageNumbers verifies page number window generation.
func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name string
		page int
		tot  int
		want []int
	}{
		{"3pages_at1", 1, 3, []int{1, 2, 3}},
		{"10pages_at1", 1, 10, []int{1, 2, 3, 4, 5}},
		{"10pages_at5", 5, 10, []int{3, 4, 5, 6, 7}},
		{"10pages_at10", 10, 10, []int{6, 7, 8, 9, 10}},
		{"1page", 1, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, 20, tt.tot*20)
			if diff := cmp.Diff(tt.want, pi.PageNumbers()); diff != "" {
				t.Errorf("PageNumbers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
