package table

import (
	"errors"
	"slices"
	"testing"
)

func TestRename(t *testing.T) {
	tbl, _ := Ingest("Description,Population (GB+NI),Unemployment rate\n1855,23000000,3.73\n", ',', true)

	got, err := Rename(tbl, RenameMap{
		"Description":        "year",
		"Population (GB+NI)": "population",
		"Unemployment rate":  "unemployment_rate",
	})
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	want := []string{"year", "population", "unemployment_rate"}
	if cols := got.Columns(); !slices.Equal(cols, want) {
		t.Errorf("Columns() = %v, want %v", cols, want)
	}
	if v, _ := got.Row(0).Get("year"); v != "1855" {
		t.Errorf("year = %q, want %q", v, "1855")
	}
	if _, ok := got.Row(0).Get("Description"); ok {
		t.Error("old name still resolves after rename")
	}
	if !slices.Equal(tbl.Columns(), []string{"Description", "Population (GB+NI)", "Unemployment rate"}) {
		t.Errorf("input columns changed: %v", tbl.Columns())
	}
}

func TestRename_Errors(t *testing.T) {
	tbl, _ := Ingest(ukSample, ',', true)

	tests := []struct {
		name    string
		m       RenameMap
		target  error
		wantCol string
	}{
		{"unknown key", RenameMap{"gdp": "x"}, ErrUnknownColumn, "gdp"},
		{"collides with existing column", RenameMap{"year": "population"}, ErrDuplicateColumn, "population"},
		{"two keys to one name", RenameMap{"year": "x", "population": "x"}, ErrDuplicateColumn, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rename(tbl, tt.m)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Rename() error = %v, want %v", err, tt.target)
			}
			var col string
			var uce *UnknownColumnError
			var dce *DuplicateColumnError
			switch {
			case errors.As(err, &uce):
				col = uce.Column
			case errors.As(err, &dce):
				col = dce.Column
			}
			if col != tt.wantCol {
				t.Errorf("error column = %q, want %q", col, tt.wantCol)
			}
		})
	}
}

func TestRename_Swap(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, []string{"1", "2"})

	got, err := Rename(tbl, RenameMap{"a": "b", "b": "a"})
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if v, _ := got.Row(0).Get("a"); v != "2" {
		t.Errorf("a = %q, want %q", v, "2")
	}
}

func TestRename_EmptyMap(t *testing.T) {
	tbl, _ := Ingest(ukSample, ',', true)

	got, err := Rename(tbl, nil)
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if !got.Equal(tbl) {
		t.Error("Rename(nil) changed the table")
	}
}

func TestRename_CommutesWithProject(t *testing.T) {
	tbl, _ := Ingest("a,b,c\n1,2,3\n4,5,6\n", ',', true)
	m := RenameMap{"a": "x", "c": "z"}

	renamed, err := Rename(tbl, m)
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	left, err := Project(renamed, []string{"z", "x"})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	projected, err := Project(tbl, []string{"c", "a"})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	right, err := Rename(projected, m)
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if !left.Equal(right) {
		t.Errorf("rename->project = %v %v, project->rename = %v %v",
			left.Columns(), left.Records(), right.Columns(), right.Records())
	}
}
