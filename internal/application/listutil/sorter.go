package listutil

import (
	"cmp"
	"slices"
	"strings"
)

// Sort directions.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// SortRecords returns a stably sorted copy of records ordered by field.
// Dates compare by instant and unparsable dates always go last, in either direction.
// Numbers parse with a fallback of 0. Everything else compares lowercased.
// "desc" inverts the comparator, so equal keys keep their input order in both directions.
// PRE: none
// POST: records is not mutated; an empty field returns the input order
func SortRecords(records []Record, field, dir string, kind FieldKind) []Record {
	return sortBy(records, func(r Record) (any, bool) { return r.Get(field) }, field == "", dir, kind)
}

// sortBy sorts records by the value key extracts. skip keeps input order.
func sortBy(records []Record, key func(Record) (any, bool), skip bool, dir string, kind FieldKind) []Record {
	out := slices.Clone(records)
	if skip || len(out) < 2 {
		return out
	}
	desc := dir == DirDesc

	slices.SortStableFunc(out, func(a, b Record) int {
		av, aok := key(a)
		bv, bok := key(b)

		if kind == KindDate {
			at, aValid := ParseDate(av)
			bt, bValid := ParseDate(bv)
			aValid = aok && aValid
			bValid = bok && bValid
			switch {
			case !aValid && !bValid:
				return 0
			case !aValid:
				return 1
			case !bValid:
				return -1
			}
			return flip(at.Compare(bt), desc)
		}

		var c int
		switch kind {
		case KindNumeric:
			c = cmp.Compare(numberOf(av), numberOf(bv))
		case KindBoolean:
			c = cmp.Compare(numberOf(boolOf(av)), numberOf(boolOf(bv)))
		default:
			c = strings.Compare(strings.ToLower(stringify(av)), strings.ToLower(stringify(bv)))
		}
		return flip(c, desc)
	})
	return out
}

func flip(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// boolOf reads stored booleans, including SQLite's 0/1 and "true"/"false" text.
func boolOf(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	}
	s := strings.ToLower(strings.TrimSpace(stringify(v)))
	return s == "true" || s == "1" || s == "t" || s == "sim"
}
