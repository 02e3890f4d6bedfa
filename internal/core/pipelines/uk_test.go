package pipelines

import (
	"slices"
	"testing"

	"github.com/JonMunkholm/tabproj/internal/core"
	"github.com/JonMunkholm/tabproj/internal/table"
)

func TestUKMacro_Registered(t *testing.T) {
	def, ok := core.Get("uk_macro")
	if !ok {
		t.Fatal("uk_macro not registered")
	}
	if def.SortBy != "year" {
		t.Errorf("SortBy = %q, want %q", def.SortBy, "year")
	}
}

func TestUKMacro_Apply(t *testing.T) {
	def, _ := core.Get("uk_macro")

	src := "Description,Real GDP,Population (GB+NI),Unemployment rate\n" +
		"1855,100,23000000,3.73\n" +
		"1857,101,23300000,6.0\n" +
		"1856,99,23100000,3.52\n"
	in, err := table.Ingest(src, def.SeparatorRune(','), !def.NoHeader)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	out, err := def.Apply(in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	wantCols := []string{"year", "population", "unemployment_rate"}
	if cols := out.Columns(); !slices.Equal(cols, wantCols) {
		t.Errorf("Columns() = %v, want %v", cols, wantCols)
	}
	years, _ := out.Column("year")
	if !slices.Equal(years, []string{"1857", "1856", "1855"}) {
		t.Errorf("years = %v, want descending", years)
	}
}
