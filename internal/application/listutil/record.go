package listutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one row of domain data keyed by column name.
// Values are string, number, bool, date-like string, time.Time or nil.
type Record map[string]any

// Get returns the value stored under field.
// PRE: none
// POST: ok is false when the field is absent or nil
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the string form of field, or "" when absent.
func (r Record) String(field string) string {
	v, ok := r.Get(field)
	if !ok {
		return ""
	}
	return stringify(v)
}

// ID returns the record's primary key as a string.
func (r Record) ID() string {
	return r.String("id")
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// stringify renders a record value the way filters and labels compare it.
// Whole floats print without a fractional part so 25.0 and "25" match.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// numberOf coerces a value to float64. Unparsable values yield 0.
func numberOf(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(stringify(v)), 64)
	if err != nil {
		return 0
	}
	return f
}

// dateLayouts are the timestamp shapes produced by SQLite, Postgres and HTML date inputs.
// Layouts without an offset hold UTC, as the stores write them.
var dateLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339Nano, false},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02 15:04:05.999999999-07", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", true},
	{"02/01/2006", true},
}

// ParseDate parses a date-like value.
// PRE: none
// POST: ok is false for nil, blank or unrecognised values
func ParseDate(v any) (time.Time, bool) {
	d, _, ok := parseDate(v)
	return d, ok
}

// ParseDateIn parses v for calendar decisions in loc. Instants are moved into loc;
// date-only values (birth dates, HTML date inputs) keep their calendar day.
// A nil loc means UTC.
func ParseDateIn(v any, loc *time.Location) (time.Time, bool) {
	d, dateOnly, ok := parseDate(v)
	if !ok || dateOnly {
		return d, ok
	}
	if loc == nil {
		loc = time.UTC
	}
	return d.In(loc), true
}

// parseDate treats a time.Time at exactly UTC midnight as a date column.
func parseDate(v any) (time.Time, bool, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false, false
	case time.Time:
		if t.IsZero() {
			return t, false, false
		}
		midnight := t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour))
		return t, midnight, true
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return time.Time{}, false, false
	}
	for _, l := range dateLayouts {
		if d, err := time.Parse(l.layout, s); err == nil {
			return d, l.dateOnly, true
		}
	}
	return time.Time{}, false, false
}
