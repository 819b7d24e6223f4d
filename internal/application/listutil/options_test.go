package listutil

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestBuildOptions_NormalizedGroup verifies spellings of one city collapse to a single option.
func TestBuildOptions_NormalizedGroup(t *testing.T) {
	records := []Record{
		{"cidade": "Xangri-lá"},
		{"cidade": "xangri-lá"},
		{"cidade": "Xangri-Lá"},
	}
	opts := BuildOptions(records, Categorical("cidade", "Cidade").Normalized())
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d: %v", len(opts), opts)
	}
	if key := Normalize(opts[0].Value); key != "xangri-la" {
		t.Errorf("expected key xangri-la, got %q", key)
	}
	if opts[0].Label != "Xangri-lá" {
		t.Errorf("expected first-seen canonical label, got %q", opts[0].Label)
	}
}

// TestBuildOptions_NormalizedSortedByLabel verifies canonical labels, ordering and blank exclusion.
func TestBuildOptions_NormalizedSortedByLabel(t *testing.T) {
	records := []Record{
		{"cidade": "Tramandaí"},
		{"cidade": "porto alegre"},
		{"cidade": "Porto Alegre"},
		{"cidade": "Porto Alegre"},
		{"cidade": "   "},
		{"cidade": nil},
		{},
		{"cidade": "Osório"},
		{"cidade": "osorio"},
	}
	got := BuildOptions(records, Categorical("cidade", "Cidade").Normalized())
	want := []Option{
		{Value: "Osório", Label: "Osório"},
		{Value: "Porto Alegre", Label: "Porto Alegre"},
		{Value: "Tramandaí", Label: "Tramandaí"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildOptions_NumericAges verifies numeric ordering and "N anos" labels.
func TestBuildOptions_NumericAges(t *testing.T) {
	records := []Record{
		{"idade": float64(17)},
		{"idade": int64(9)},
		{"idade": "25"},
		{"idade": float64(17)},
		{"idade": nil},
	}
	got := BuildOptions(records, Numeric("idade", "Idade").WithLabels(YearsLabel))
	want := []Option{
		{Value: "9", Label: "9 anos"},
		{Value: "17", Label: "17 anos"},
		{Value: "25", Label: "25 anos"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildOptions_DerivedAges verifies ages computed from birth dates become options.
func TestBuildOptions_DerivedAges(t *testing.T) {
	now := func() time.Time { return date(2025, 7, 18) }
	records := []Record{
		{"data_nascimento": "2010-07-18"},
		{"data_nascimento": "2010-07-19"},
		{"data_nascimento": "2012-01-01"},
		{"data_nascimento": "invalid"},
	}
	got := BuildOptions(records, Age("idade", "Idade", "data_nascimento", now, time.UTC))
	want := []Option{
		{Value: "13", Label: "13 anos"},
		{Value: "14", Label: "14 anos"},
		{Value: "15", Label: "15 anos"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildOptions_StaticIgnoresData verifies fixed enumerations are not derived from records.
func TestBuildOptions_StaticIgnoresData(t *testing.T) {
	records := []Record{{"created_at": "2025-03-01"}}
	got := BuildOptions(records, Month("mes", "Mês", "created_at", time.UTC))
	if len(got) != 12 {
		t.Fatalf("expected 12 months, got %d", len(got))
	}
	if got[0] != (Option{Value: "01", Label: "Janeiro"}) || got[11] != (Option{Value: "12", Label: "Dezembro"}) {
		t.Errorf("unexpected month bounds: %v .. %v", got[0], got[11])
	}

	empty := BuildOptions(nil, Month("mes", "Mês", "created_at", time.UTC))
	if len(empty) != 12 {
		t.Errorf("expected static months without data, got %d", len(empty))
	}
}

// TestBuildOptions_StaticIsCopy verifies callers cannot mutate a descriptor's enumeration.
func TestBuildOptions_StaticIsCopy(t *testing.T) {
	f := Categorical("status", "Status").WithOptions(Option{Value: "pago", Label: "Pago"})
	got := BuildOptions(nil, f)
	got[0].Label = "changed"
	if f.Static[0].Label != "Pago" {
		t.Error("static options were mutated through the returned slice")
	}
}

// TestBuildOptions_PlainCategorical verifies distinct, case-insensitive ascending values.
func TestBuildOptions_PlainCategorical(t *testing.T) {
	records := []Record{
		{"tamanho": "M"},
		{"tamanho": "g"},
		{"tamanho": "P"},
		{"tamanho": "M"},
		{"tamanho": ""},
	}
	got := BuildOptions(records, Categorical("tamanho", "Tamanho"))
	want := []Option{
		{Value: "g", Label: "g"},
		{Value: "M", Label: "M"},
		{Value: "P", Label: "P"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildOptions_Defaults verifies Default values appear as options for nil fields.
func TestBuildOptions_Defaults(t *testing.T) {
	records := []Record{{"status": nil}, {"status": "pago"}}
	got := BuildOptions(records, Categorical("status", "Status").WithDefault("nao_pago"))
	want := []Option{{Value: "nao_pago", Label: "nao_pago"}, {Value: "pago", Label: "pago"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}
