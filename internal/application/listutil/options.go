package listutil

import (
	"sort"
	"strings"
)

// BuildOptions derives the distinct filter choices for field from records.
// Options always describe the unfiltered dataset; callers pass the full snapshot.
//   - Static fields return their declared enumeration untouched.
//   - Normalized fields yield one option per normalized key, labelled with the
//     canonical spelling and ordered by label.
//   - Other fields yield distinct values ordered ascending, numerically for numeric kinds.
//
// Blank values never become options.
// PRE: none
// POST: no duplicate Values; order is deterministic for the same input
func BuildOptions(records []Record, field FieldDescriptor) []Option {
	if field.Static != nil {
		out := make([]Option, len(field.Static))
		copy(out, field.Static)
		return out
	}
	if field.Normalize != nil {
		return normalizedOptions(records, field)
	}
	return distinctOptions(records, field)
}

func normalizedOptions(records []Record, field FieldDescriptor) []Option {
	var raws []string
	var keys []string
	seen := make(map[string]bool)
	for _, r := range records {
		v, ok := field.Value(r)
		if !ok {
			continue
		}
		key := field.Normalize(v)
		if key == "" {
			continue
		}
		raws = append(raws, v)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	opts := make([]Option, 0, len(keys))
	for _, key := range keys {
		label := ResolveCanonical(key, raws)
		opts = append(opts, Option{Value: label, Label: field.label(label)})
	}
	sort.SliceStable(opts, func(i, j int) bool {
		ni, nj := Normalize(opts[i].Label), Normalize(opts[j].Label)
		if ni != nj {
			return ni < nj
		}
		return opts[i].Label < opts[j].Label
	})
	return opts
}

func distinctOptions(records []Record, field FieldDescriptor) []Option {
	var values []string
	seen := make(map[string]bool)
	for _, r := range records {
		v, ok := field.Value(r)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	if field.Kind == KindNumeric {
		sort.SliceStable(values, func(i, j int) bool {
			return numberOf(values[i]) < numberOf(values[j])
		})
	} else {
		sort.SliceStable(values, func(i, j int) bool {
			li, lj := strings.ToLower(values[i]), strings.ToLower(values[j])
			if li != lj {
				return li < lj
			}
			return values[i] < values[j]
		})
	}

	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: field.label(v)})
	}
	return opts
}

// label formats an option label with OptionLabel when one is set.
func (f FieldDescriptor) label(value string) string {
	if f.OptionLabel != nil {
		return f.OptionLabel(value)
	}
	return value
}
