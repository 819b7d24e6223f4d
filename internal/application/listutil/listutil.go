package listutil

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int `schema:"page"`     // 1-indexed page number
	PerPage int `schema:"per_page"` // rows per page
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string `schema:"sort"` // field name
	Dir  string `schema:"dir"`  // "asc" or "desc"
}

// ListParams combines all list view parameters.
type ListParams struct {
	PageParams
	SortParams
	Search  string              `schema:"q"`
	Filters map[string][]string `schema:"-"`
}

// State returns the filter state the params describe.
func (p ListParams) State() FilterState {
	return FilterState{Selected: p.Filters, Search: p.Search, Sort: p.Sort, Dir: p.Dir}
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int `json:"page"`        // current page (1-indexed)
	PerPage    int `json:"per_page"`    // rows per page
	Total      int `json:"total"`       // total matching rows
	TotalPages int `json:"total_pages"` // ceil(Total / PerPage)
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 10

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{5, 10, 20, 50, 100}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// ParseListParams parses page, sort, search and filter selections from URL query values.
// Filter values may repeat (?cidade=a&cidade=b) or be comma separated (?cidade=a,b).
// PRE: cfg passes Validate
// POST: Page >= 1, PerPage is an allowed option, Sort is sortable or empty,
// Dir is "asc" or "desc", Filters only holds cfg's filter fields
func ParseListParams(q url.Values, cfg ViewConfig) ListParams {
	var lp ListParams
	if err := decoder.Decode(&lp, q); err != nil {
		slog.Debug("list_params_decode", "view", cfg.Name, "error", err)
	}

	if lp.Page < 1 {
		lp.Page = 1
	}
	if !isValidPerPage(lp.PerPage) {
		lp.PerPage = DefaultPerPage
	}
	if !cfg.IsSortable(lp.Sort) {
		lp.Sort = cfg.DefaultSort
		if lp.Dir == "" {
			lp.Dir = cfg.DefaultDir
		}
	}
	if lp.Dir != DirAsc && lp.Dir != DirDesc {
		lp.Dir = DirAsc
	}
	lp.Search = strings.TrimSpace(lp.Search)
	lp.Filters = ParseFilterParams(q, cfg.Filters)
	return lp
}

// ParseFilterParams extracts multi-select filter values for the given keys.
// Each selected option is its own repeated parameter; values are never split,
// so option values may contain commas ("Porto Alegre, RS").
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns only recognised keys with at least one non-blank value
func ParseFilterParams(q url.Values, filterKeys []string) map[string][]string {
	out := make(map[string][]string)
	for _, key := range filterKeys {
		var values []string
		for _, v := range q[key] {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			out[key] = values
		}
	}
	return out
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
// PRE: PageInfo is valid
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// PRE: PageInfo is valid
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// PRE: PageInfo is valid
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// Paginate returns the slice of rows on the current page.
// PRE: len(rows) == p.Total
// POST: returns at most PerPage rows; never panics on short input
func (p PageInfo) Paginate(rows []Record) []Record {
	start := p.Offset()
	if start >= len(rows) {
		return []Record{}
	}
	end := start + p.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageNumbers returns the page numbers to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// PRE: PageInfo is valid
// POST: Returns slice of at most 5 page numbers centered on current page
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
