package listutil

import (
	"strconv"
	"time"
)

// CalculateAge returns completed years between birth and asOf.
// A birthday later in the year than asOf has not been reached yet.
// PRE: none
// POST: non-negative when birth is not after asOf; negative for future birth dates
func CalculateAge(birth, asOf time.Time) int {
	age := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeOn returns a Derive func computing the age in years from the date in source.
// now is read on every call so ages roll forward with each recomputation;
// birthdays turn over at midnight in loc.
// Records with an unparsable or future birth date have no age.
func AgeOn(source string, now func() time.Time, loc *time.Location) func(Record) (string, bool) {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return func(r Record) (string, bool) {
		v, ok := r.Get(source)
		if !ok {
			return "", false
		}
		birth, ok := ParseDateIn(v, loc)
		if !ok {
			return "", false
		}
		age := CalculateAge(birth, now().In(loc))
		if age < 0 {
			return "", false
		}
		return strconv.Itoa(age), true
	}
}

// MonthOf returns a Derive func extracting the zero-padded "MM" of the date in source,
// as seen from loc.
func MonthOf(source string, loc *time.Location) func(Record) (string, bool) {
	return func(r Record) (string, bool) {
		v, ok := r.Get(source)
		if !ok {
			return "", false
		}
		d, ok := ParseDateIn(v, loc)
		if !ok {
			return "", false
		}
		return d.Format("01"), true
	}
}
