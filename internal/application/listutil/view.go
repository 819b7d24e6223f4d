package listutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SortOption is one entry of a view's sort selector.
type SortOption struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// ViewConfig declares one list view: its fields, which of them render as
// filter controls, and the sort selector.
type ViewConfig struct {
	Name        string
	Title       string
	Fields      []FieldDescriptor
	Filters     []string // field names shown as filter controls, in display order
	Sorts       []SortOption
	DefaultSort string
	DefaultDir  string
}

// Field returns the descriptor named name.
func (c ViewConfig) Field(name string) (FieldDescriptor, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// ColumnLabel returns the display header for a table column: the label of the
// field reading it directly, or the column name in title case ("data_nascimento"
// becomes "Data Nascimento").
func (c ViewConfig) ColumnLabel(column string) string {
	for _, f := range c.Fields {
		if f.Derive == nil && f.source() == column && f.Label != "" {
			return f.Label
		}
	}
	// Casers keep state between calls and cannot be shared.
	return cases.Title(language.BrazilianPortuguese).String(strings.ReplaceAll(column, "_", " "))
}

// FilterFields returns the descriptors listed in Filters, in order.
func (c ViewConfig) FilterFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(c.Filters))
	for _, name := range c.Filters {
		if f, ok := c.Field(name); ok {
			out = append(out, f)
		}
	}
	return out
}

// IsSortable reports whether field appears in the sort selector.
func (c ViewConfig) IsSortable(field string) bool {
	for _, s := range c.Sorts {
		if s.Field == field {
			return true
		}
	}
	return false
}

// Validate checks that every filter and sort names a declared field.
// PRE: none
// POST: returns nil if the config is consistent
func (c ViewConfig) Validate() error {
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("view %s: field with empty name", c.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("view %s: duplicate field %q", c.Name, f.Name)
		}
		seen[f.Name] = true
	}
	for _, name := range c.Filters {
		if !seen[name] {
			return fmt.Errorf("view %s: filter %q has no field", c.Name, name)
		}
	}
	for _, s := range c.Sorts {
		if !seen[s.Field] {
			return fmt.Errorf("view %s: sort %q has no field", c.Name, s.Field)
		}
	}
	if c.DefaultSort != "" && !c.IsSortable(c.DefaultSort) {
		return fmt.Errorf("view %s: default sort %q is not sortable", c.Name, c.DefaultSort)
	}
	return nil
}

// Result is one published recomputation.
type Result struct {
	Rows    []Record            `json:"rows"`
	Options map[string][]Option `json:"options"`
	Total   int                 `json:"total"`   // records in the source snapshot
	Matched int                 `json:"matched"` // records passing the filters
	State   FilterState         `json:"state"`
}

// Fetcher supplies the full dataset for a view.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]Record, error)
}

// View runs the filter and sort pipeline for one list and republishes on every change.
// Each mutation recomputes synchronously: options (from the unfiltered data),
// then the predicate, then the sort, then publish.
type View struct {
	mu      sync.Mutex
	cfg     ViewConfig
	publish func(Result)
	data    []Record
	options map[string][]Option
	state   FilterState
	last    Result
	closed  atomic.Bool

	// OnRecompute, when set, is called after every recomputation with the view name.
	OnRecompute func(view string)
}

// NewView creates a view with default sort applied. publish may be nil.
// PRE: cfg passes Validate
// POST: the view holds an empty dataset and an empty filter state
func NewView(cfg ViewConfig, publish func(Result)) *View {
	v := &View{
		cfg:     cfg,
		publish: publish,
		options: map[string][]Option{},
	}
	v.state = v.defaultState()
	v.options = v.buildOptions()
	return v
}

func (v *View) defaultState() FilterState {
	dir := v.cfg.DefaultDir
	if dir == "" {
		dir = DirAsc
	}
	return FilterState{Selected: map[string][]string{}, Sort: v.cfg.DefaultSort, Dir: dir}
}

// Config returns the view configuration.
func (v *View) Config() ViewConfig {
	return v.cfg
}

// Load fetches the dataset from src and recomputes.
// When the view is closed before the fetch returns, the result is discarded.
// A failed fetch keeps the previous snapshot; the error is returned for the caller to report.
// PRE: src is non-nil
// POST: on success the view holds the fetched snapshot and has published once
func (v *View) Load(ctx context.Context, src Fetcher) error {
	records, err := src.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", v.cfg.Name, err)
	}
	if v.closed.Load() {
		return nil
	}
	v.SetData(records)
	return nil
}

// SetData replaces the dataset and recomputes options and rows.
func (v *View) SetData(records []Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = records
	v.options = v.buildOptions()
	v.recompute()
}

// Select replaces the selection for one filter field.
func (v *View) Select(field string, values ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(values) == 0 {
		delete(v.state.Selected, field)
	} else {
		v.state.Selected[field] = append([]string(nil), values...)
	}
	v.recompute()
}

// Toggle adds value to a field's selection, or removes it when already selected.
func (v *View) Toggle(field, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	current := v.state.Selected[field]
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, s := range current {
		if s == value {
			removed = true
			continue
		}
		next = append(next, s)
	}
	if !removed {
		next = append(next, value)
	}
	if len(next) == 0 {
		delete(v.state.Selected, field)
	} else {
		v.state.Selected[field] = next
	}
	v.recompute()
}

// SetSearch sets the free-text search term.
func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Search = term
	v.recompute()
}

// SetSort selects the sort field and direction. Unknown fields fall back to the default sort.
func (v *View) SetSort(field, dir string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Sort, v.state.Dir = v.sanitizeSort(field, dir)
	v.recompute()
}

// Apply replaces the whole filter state and returns the recomputed result.
func (v *View) Apply(state FilterState) Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := state.Clone()
	if next.Selected == nil {
		next.Selected = map[string][]string{}
	}
	next.Sort, next.Dir = v.sanitizeSort(next.Sort, next.Dir)
	v.state = next
	v.recompute()
	return v.last
}

// Clear resets filters, search and sort to their defaults.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = v.defaultState()
	v.recompute()
}

// Result returns the last published result.
func (v *View) Result() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// Close marks the view as gone. Pending loads are discarded and nothing further is published.
func (v *View) Close() {
	v.closed.Store(true)
}

func (v *View) sanitizeSort(field, dir string) (string, string) {
	if field == "" || !v.cfg.IsSortable(field) {
		field = v.cfg.DefaultSort
		if dir == "" {
			dir = v.cfg.DefaultDir
		}
	}
	if dir != DirAsc && dir != DirDesc {
		dir = DirAsc
	}
	return field, dir
}

func (v *View) buildOptions() map[string][]Option {
	out := make(map[string][]Option, len(v.cfg.Filters))
	for _, f := range v.cfg.FilterFields() {
		out[f.Name] = BuildOptions(v.data, f)
	}
	return out
}

// recompute runs the pipeline and publishes. Caller holds mu.
func (v *View) recompute() {
	matched := Filter(v.data, BuildPredicate(v.state, v.cfg.Fields))

	rows := matched
	if f, ok := v.cfg.Field(v.state.Sort); ok && v.state.Sort != "" {
		rows = sortBy(matched, f.sortValue, false, v.state.Dir, f.Kind)
	}

	v.last = Result{
		Rows:    rows,
		Options: v.options,
		Total:   len(v.data),
		Matched: len(matched),
		State:   v.state.Clone(),
	}
	if v.OnRecompute != nil {
		v.OnRecompute(v.cfg.Name)
	}
	if v.publish != nil && !v.closed.Load() {
		v.publish(v.last)
	}
}
