package listutil

import "strings"

// Predicate reports whether a record passes the active filters.
type Predicate func(Record) bool

// FilterState is a view's current filter, search and sort selection.
// It is owned by one view and never persisted.
type FilterState struct {
	Selected map[string][]string `json:"selected,omitempty"`
	Search   string              `json:"search,omitempty"`
	Sort     string              `json:"sort,omitempty"`
	Dir      string              `json:"dir,omitempty"`
}

// IsEmpty reports whether no filter or search is active. Sort is not a filter.
func (s FilterState) IsEmpty() bool {
	if strings.TrimSpace(s.Search) != "" {
		return false
	}
	for _, values := range s.Selected {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the state.
func (s FilterState) Clone() FilterState {
	out := s
	if s.Selected != nil {
		out.Selected = make(map[string][]string, len(s.Selected))
		for k, v := range s.Selected {
			out.Selected[k] = append([]string(nil), v...)
		}
	}
	return out
}

// fieldCheck is one active filter category.
type fieldCheck struct {
	field  FieldDescriptor
	accept map[string]bool
}

// BuildPredicate composes the active selections of state into one predicate.
// A record passes only if it matches every field with a non-empty selection
// (AND across fields, OR within a field). Normalized fields compare
// normalized-to-normalized; derived fields such as months compare their derived
// value. Selections for names without a descriptor are ignored.
// A non-blank Search additionally requires some searchable field to contain it.
// PRE: descriptors have unique names
// POST: an empty state yields a predicate accepting every record;
// a record lacking a value for an active field is rejected
func BuildPredicate(state FilterState, descriptors []FieldDescriptor) Predicate {
	var checks []fieldCheck
	for _, d := range descriptors {
		selected := state.Selected[d.Name]
		if len(selected) == 0 {
			continue
		}
		accept := make(map[string]bool, len(selected))
		for _, s := range selected {
			accept[d.matchKey(s)] = true
		}
		checks = append(checks, fieldCheck{field: d, accept: accept})
	}

	term := Normalize(state.Search)
	var searchable []FieldDescriptor
	if term != "" {
		for _, d := range descriptors {
			if d.Searchable {
				searchable = append(searchable, d)
			}
		}
	}

	if len(checks) == 0 && term == "" {
		return func(Record) bool { return true }
	}

	return func(r Record) bool {
		for _, c := range checks {
			v, ok := c.field.Value(r)
			if !ok || !c.accept[c.field.matchKey(v)] {
				return false
			}
		}
		if term == "" {
			return true
		}
		for _, d := range searchable {
			if v, ok := d.Value(r); ok && strings.Contains(Normalize(v), term) {
				return true
			}
		}
		return false
	}
}

// Filter returns the records accepted by p, preserving input order.
func Filter(records []Record, p Predicate) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}
