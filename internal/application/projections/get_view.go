package projections

import (
	"context"
	"time"

	"onda/internal/application/catalog"
	"onda/internal/application/listutil"
	"onda/internal/metrics"
)

// GetViewQuery carries the view and the parsed list parameters.
type GetViewQuery struct {
	Entry  catalog.Entry
	Params listutil.ListParams
}

// GetViewDeps holds dependencies for GetView.
type GetViewDeps struct {
	Fetcher listutil.Fetcher
	// Observe, when set, receives the fetched row count and the time spent
	// loading and filtering the view.
	Observe func(view string, rows int, took time.Duration)
}

// FilterControl is one rendered filter: its options and the current selection.
type FilterControl struct {
	Name     string            `json:"name"`
	Label    string            `json:"label"`
	Kind     string            `json:"kind"`
	Options  []listutil.Option `json:"options"`
	Selected []string          `json:"selected"`
}

// GetViewResult is one page of a filtered, sorted view.
type GetViewResult struct {
	View    string                `json:"view"`
	Title   string                `json:"title"`
	Columns []string              `json:"columns"`
	Filters []FilterControl       `json:"filters"`
	Sorts   []listutil.SortOption `json:"sorts"`
	Search  string                `json:"search"`
	Sort    string                `json:"sort"`
	Dir     string                `json:"dir"`
	Rows    []listutil.Record     `json:"rows"`
	Total   int                   `json:"total"`
	Matched int                   `json:"matched"`
	Page    listutil.PageInfo     `json:"page"`
	Pages   []int                 `json:"pages"`
}

// QueryGetView fetches every row of the view's table, applies the requested filters
// and sort, and returns the requested page.
// PRE: Params were produced by listutil.ParseListParams for Entry.Config
// POST: filter options come from the unfiltered rows; Page is clamped to the matched rows
func QueryGetView(ctx context.Context, query GetViewQuery, deps GetViewDeps) (GetViewResult, error) {
	all, err := applyView(ctx, query, deps)
	if err != nil {
		return GetViewResult{}, err
	}

	cfg := query.Entry.Config
	page := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, all.Matched)

	filters := make([]FilterControl, 0, len(cfg.Filters))
	for _, f := range cfg.FilterFields() {
		filters = append(filters, FilterControl{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     f.Kind.String(),
			Options:  all.Options[f.Name],
			Selected: all.State.Selected[f.Name],
		})
	}

	return GetViewResult{
		View:    cfg.Name,
		Title:   cfg.Title,
		Columns: query.Entry.Form.Columns,
		Filters: filters,
		Sorts:   cfg.Sorts,
		Search:  all.State.Search,
		Sort:    all.State.Sort,
		Dir:     all.State.Dir,
		Rows:    page.Paginate(all.Rows),
		Total:   all.Total,
		Matched: all.Matched,
		Page:    page,
		Pages:   page.PageNumbers(),
	}, nil
}

// QueryExportView returns every matching row, sorted, without pagination.
// PRE: Params were produced by listutil.ParseListParams for Entry.Config
func QueryExportView(ctx context.Context, query GetViewQuery, deps GetViewDeps) ([]listutil.Record, error) {
	res, err := applyView(ctx, query, deps)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func applyView(ctx context.Context, query GetViewQuery, deps GetViewDeps) (listutil.Result, error) {
	v := listutil.NewView(query.Entry.Config, nil)
	defer v.Close()
	v.OnRecompute = func(view string) {
		metrics.ViewRecomputations.WithLabelValues(view).Inc()
	}
	start := time.Now()
	if err := v.Load(ctx, deps.Fetcher); err != nil {
		return listutil.Result{}, err
	}
	res := v.Apply(query.Params.State())
	if deps.Observe != nil {
		deps.Observe(query.Entry.Config.Name, res.Total, time.Since(start))
	}
	return res, nil
}
