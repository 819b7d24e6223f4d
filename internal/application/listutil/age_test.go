package listutil

import (
	"testing"
	"time"
)

// brt is the retreat's offset, fixed so tests do not depend on tzdata.
var brt = time.FixedZone("BRT", -3*60*60)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestCalculateAge verifies the birthday boundary and future birth dates.
func TestCalculateAge(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		asOf  time.Time
		want  int
	}{
		{"dayBeforeBirthday", date(2000, 7, 18), date(2025, 7, 17), 24},
		{"onBirthday", date(2000, 7, 18), date(2025, 7, 18), 25},
		{"earlierMonth", date(2010, 12, 1), date(2025, 7, 18), 14},
		{"laterMonth", date(2010, 1, 31), date(2025, 7, 18), 15},
		{"leapDayBeforeMarch", date(2008, 2, 29), date(2025, 2, 28), 16},
		{"leapDayInMarch", date(2008, 2, 29), date(2025, 3, 1), 17},
		{"sameDay", date(2025, 7, 18), date(2025, 7, 18), 0},
		{"future", date(2026, 1, 1), date(2025, 7, 18), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateAge(tt.birth, tt.asOf); got != tt.want {
				t.Errorf("CalculateAge = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestAgeOn verifies derived ages read the clock per call and skip unusable dates.
func TestAgeOn(t *testing.T) {
	now := date(2025, 7, 17)
	derive := AgeOn("data_nascimento", func() time.Time { return now }, time.UTC)

	r := Record{"data_nascimento": "2000-07-18"}
	if got, ok := derive(r); !ok || got != "24" {
		t.Errorf("expected 24, got %q ok=%v", got, ok)
	}

	now = date(2025, 7, 18)
	if got, _ := derive(r); got != "25" {
		t.Errorf("expected age to roll forward to 25, got %q", got)
	}

	for _, bad := range []Record{{}, {"data_nascimento": nil}, {"data_nascimento": "ontem"}, {"data_nascimento": "2030-01-01"}} {
		if got, ok := derive(bad); ok {
			t.Errorf("expected no age for %v, got %q", bad, got)
		}
	}
}

// TestMonthOf verifies zero-padded month extraction from several timestamp shapes.
func TestMonthOf(t *testing.T) {
	derive := MonthOf("created_at", time.UTC)
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{"2025-03-09T14:22:00Z", "03", true},
		{"2025-11-30 08:00:00", "11", true},
		{"2025-07-01", "07", true},
		{"2025-05-12 10:11:12.123456+00", "05", true},
		{date(2024, 12, 25), "12", true},
		{"not a date", "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := derive(Record{"created_at": tt.in})
		if got != tt.want || ok != tt.ok {
			t.Errorf("MonthOf(%v) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// TestMonthOf_Location verifies instants are bucketed by their local month while
// date-only values keep their calendar month.
func TestMonthOf_Location(t *testing.T) {
	derive := MonthOf("created_at", brt)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"evening of 30 June stored as UTC", "2025-07-01T02:30:00Z", "06"},
		{"naive UTC from SQLite", "2025-07-01 02:30:00", "06"},
		{"time value", time.Date(2025, 7, 1, 2, 30, 0, 0, time.UTC), "06"},
		{"morning of 1 July", "2025-07-01T12:00:00Z", "07"},
		{"date only", "2025-07-01", "07"},
		{"date column at UTC midnight", date(2025, 7, 1), "07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := derive(Record{"created_at": tt.in}); !ok || got != tt.want {
				t.Errorf("got %q,%v want %q", got, ok, tt.want)
			}
		})
	}

	pred := BuildPredicate(FilterState{Selected: map[string][]string{"mes": {"06"}}},
		[]FieldDescriptor{Month("mes", "Mês", "created_at", brt)})
	if !pred(Record{"created_at": "2025-07-01T02:30:00Z"}) {
		t.Error("mes=06 rejected a registration made on the evening of 30 June")
	}
}

// TestAgeOn_Location verifies birthdays turn over at local midnight, not UTC midnight.
func TestAgeOn_Location(t *testing.T) {
	// 22:00 on 17 July in BRT.
	now := time.Date(2025, 7, 18, 1, 0, 0, 0, time.UTC)
	r := Record{"data_nascimento": "2000-07-18"}

	if got, _ := AgeOn("data_nascimento", func() time.Time { return now }, brt)(r); got != "24" {
		t.Errorf("local age = %q, want 24", got)
	}
	if got, _ := AgeOn("data_nascimento", func() time.Time { return now }, time.UTC)(r); got != "25" {
		t.Errorf("UTC age = %q, want 25", got)
	}
}
