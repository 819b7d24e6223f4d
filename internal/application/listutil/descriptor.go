package listutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldKind is how a field's values are compared and ordered.
type FieldKind uint8

const (
	KindCategorical FieldKind = iota
	KindNumeric
	KindDate
	KindBoolean
)

// String returns the lowercase kind name used in JSON view catalogs.
func (k FieldKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	default:
		return "categorical"
	}
}

// MarshalText encodes the kind by name.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Option is one selectable filter choice.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDescriptor describes how one field takes part in filtering, sorting and search.
// Descriptors are declared once per view and never mutated afterwards; the
// builder methods return modified copies.
type FieldDescriptor struct {
	Name  string    // filter and sort key
	Label string    // display label
	Kind  FieldKind // comparison kind

	// Source is the record column read for the value. Defaults to Name.
	Source string
	// Normalize folds values before grouping and matching. Nil compares raw strings.
	Normalize func(string) string
	// Derive computes the value from the whole record, overriding Source.
	Derive func(Record) (string, bool)
	// Static is a fixed option set; when set, options are never derived from data.
	Static []Option
	// OptionLabel formats the label of data-derived options.
	OptionLabel func(value string) string
	// Default stands in for a nil or blank source value.
	Default string
	// Searchable fields take part in free-text search.
	Searchable bool
}

// Categorical declares a string field.
func Categorical(name, label string) FieldDescriptor {
	return FieldDescriptor{Name: name, Label: label, Kind: KindCategorical}
}

// Numeric declares a number field.
func Numeric(name, label string) FieldDescriptor {
	return FieldDescriptor{Name: name, Label: label, Kind: KindNumeric}
}

// Date declares a date or timestamp field.
func Date(name, label string) FieldDescriptor {
	return FieldDescriptor{Name: name, Label: label, Kind: KindDate}
}

// Boolean declares a yes/no field with Portuguese labels.
func Boolean(name, label string) FieldDescriptor {
	return FieldDescriptor{
		Name:   name,
		Label:  label,
		Kind:   KindBoolean,
		Static: []Option{{Value: "true", Label: "Sim"}, {Value: "false", Label: "Não"}},
	}
}

// Month declares a "MM" filter over the date in source with static month options.
// Timestamps are bucketed by their month in loc.
func Month(name, label, source string, loc *time.Location) FieldDescriptor {
	return FieldDescriptor{
		Name:   name,
		Label:  label,
		Kind:   KindCategorical,
		Source: source,
		Derive: MonthOf(source, loc),
		Static: MonthOptions(),
	}
}

// Age declares an age-in-years filter derived from the birth date in source.
func Age(name, label, source string, now func() time.Time, loc *time.Location) FieldDescriptor {
	return FieldDescriptor{
		Name:        name,
		Label:       label,
		Kind:        KindNumeric,
		Source:      source,
		Derive:      AgeOn(source, now, loc),
		OptionLabel: YearsLabel,
	}
}

// Normalized returns a copy that groups and matches values through Normalize.
func (f FieldDescriptor) Normalized() FieldDescriptor {
	f.Normalize = Normalize
	return f
}

// From returns a copy that reads the given column.
func (f FieldDescriptor) From(source string) FieldDescriptor {
	f.Source = source
	return f
}

// WithDefault returns a copy substituting def for nil or blank values.
func (f FieldDescriptor) WithDefault(def string) FieldDescriptor {
	f.Default = def
	return f
}

// WithOptions returns a copy with a static option set.
func (f FieldDescriptor) WithOptions(opts ...Option) FieldDescriptor {
	f.Static = opts
	return f
}

// WithLabels returns a copy formatting data-derived option labels with fn.
func (f FieldDescriptor) WithLabels(fn func(string) string) FieldDescriptor {
	f.OptionLabel = fn
	return f
}

// InSearch returns a copy that takes part in free-text search.
func (f FieldDescriptor) InSearch() FieldDescriptor {
	f.Searchable = true
	return f
}

// source returns the column the descriptor reads.
func (f FieldDescriptor) source() string {
	if f.Source != "" {
		return f.Source
	}
	return f.Name
}

// Value returns the descriptor's string value for r.
// PRE: none
// POST: ok is false when the record has no usable value and no Default applies
func (f FieldDescriptor) Value(r Record) (string, bool) {
	if f.Derive != nil {
		return f.Derive(r)
	}
	if v, ok := r.Get(f.source()); ok {
		if s := stringify(v); strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	if f.Default != "" {
		return f.Default, true
	}
	return "", false
}

// matchKey is the form used when comparing a value against a selection.
func (f FieldDescriptor) matchKey(s string) string {
	if f.Normalize != nil {
		return f.Normalize(s)
	}
	if f.Kind == KindBoolean {
		return strconv.FormatBool(boolOf(s))
	}
	return strings.TrimSpace(s)
}

// sortValue is the raw value fed to the sorter for this descriptor.
func (f FieldDescriptor) sortValue(r Record) (any, bool) {
	if f.Derive != nil {
		s, ok := f.Derive(r)
		if !ok {
			return nil, false
		}
		return s, true
	}
	if v, ok := r.Get(f.source()); ok {
		return v, true
	}
	if f.Default != "" {
		return f.Default, true
	}
	return nil, false
}

// YearsLabel renders an age option as "N anos".
func YearsLabel(value string) string {
	return value + " anos"
}

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthOptions returns the twelve months as "01".."12" with Portuguese labels.
func MonthOptions() []Option {
	opts := make([]Option, 0, len(monthNames))
	for i, name := range monthNames {
		opts = append(opts, Option{Value: fmt.Sprintf("%02d", i+1), Label: name})
	}
	return opts
}
