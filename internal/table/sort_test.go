package table

import (
	"errors"
	"slices"
	"testing"
)

func column(t *testing.T, tbl *Table, name string) []string {
	t.Helper()
	v, err := tbl.Column(name)
	if err != nil {
		t.Fatalf("Column(%q) error = %v", name, err)
	}
	return v
}

func TestSortDescendingBy_Numeric(t *testing.T) {
	tbl, _ := Ingest(ukSample, ',', true)

	got, err := SortDescendingBy(tbl, "year")
	if err != nil {
		t.Fatalf("SortDescendingBy() error = %v", err)
	}
	if years := column(t, got, "year"); !slices.Equal(years, []string{"1271", "1270"}) {
		t.Errorf("years = %v, want [1271 1270]", years)
	}
	if years := column(t, tbl, "year"); !slices.Equal(years, []string{"1270", "1271"}) {
		t.Errorf("input reordered: %v", years)
	}
}

func TestSortDescendingBy_Order(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"numeric not lexicographic", []string{"9", "10", "100"}, []string{"100", "10", "9"}},
		{"decimals and negatives", []string{"-1.5", "2", "0.25", "-10"}, []string{"2", "0.25", "-1.5", "-10"}},
		{"exponent", []string{"1e3", "999", "1.5E2"}, []string{"1e3", "999", "1.5E2"}},
		{"empties last numeric", []string{"", "1", " ", "3"}, []string{"3", "1", "", " "}},
		{"mixed falls back to text", []string{"1270", "1855 Q1", "999"}, []string{"999", "1855 Q1", "1270"}},
		{"text case sensitive", []string{"b", "B", "a"}, []string{"b", "a", "B"}},
		{"empties last text", []string{"", "x", "y"}, []string{"y", "x", ""}},
		{"all empty", []string{"", ""}, []string{"", ""}},
		{"nan is text", []string{"NaN", "1"}, []string{"NaN", "1"}},
		{"overflowing exponent is text", []string{"1e700000000", "5", "1e800000000"}, []string{"5", "1e800000000", "1e700000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.values))
			for i, v := range tt.values {
				rows[i] = []string{v}
			}
			tbl := mustTable(t, []string{"k"}, rows...)

			got, err := SortDescendingBy(tbl, "k")
			if err != nil {
				t.Fatalf("SortDescendingBy() error = %v", err)
			}
			if keys := column(t, got, "k"); !slices.Equal(keys, tt.want) {
				t.Errorf("got %q, want %q", keys, tt.want)
			}
		})
	}
}

func TestSortDescendingBy_Stable(t *testing.T) {
	tbl := mustTable(t, []string{"k", "id"},
		[]string{"1", "a"},
		[]string{"2", "b"},
		[]string{"1", "c"},
		[]string{"", "d"},
		[]string{"2", "e"},
		[]string{"1.0", "f"},
		[]string{"", "g"},
	)

	got, err := SortDescendingBy(tbl, "k")
	if err != nil {
		t.Fatalf("SortDescendingBy() error = %v", err)
	}
	want := []string{"b", "e", "a", "c", "f", "d", "g"}
	if ids := column(t, got, "id"); !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestSortDescendingBy_Idempotent(t *testing.T) {
	tbl := mustTable(t, []string{"k", "id"},
		[]string{"3", "a"},
		[]string{"", "b"},
		[]string{"3", "c"},
		[]string{"7", "d"},
	)

	once, err := SortDescendingBy(tbl, "k")
	if err != nil {
		t.Fatalf("SortDescendingBy() error = %v", err)
	}
	twice, err := SortDescendingBy(once, "k")
	if err != nil {
		t.Fatalf("SortDescendingBy() error = %v", err)
	}
	if !twice.Equal(once) {
		t.Errorf("second sort = %v, want %v", twice.Records(), once.Records())
	}
}

func TestSortDescendingBy_UnknownColumn(t *testing.T) {
	tbl, _ := Ingest(ukSample, ',', true)

	_, err := SortDescendingBy(tbl, "gdp")
	var uce *UnknownColumnError
	if !errors.As(err, &uce) || uce.Column != "gdp" {
		t.Errorf("SortDescendingBy() error = %v, want unknown column gdp", err)
	}
}

func TestColumnKind(t *testing.T) {
	tbl, _ := Ingest("year,label,blank\n1270,a,\n1271,,\n", ',', true)

	tests := []struct {
		column string
		want   Kind
	}{
		{"year", KindNumeric},
		{"label", KindText},
		{"blank", KindText},
	}
	for _, tt := range tests {
		got, err := ColumnKind(tbl, tt.column)
		if err != nil {
			t.Fatalf("ColumnKind(%q) error = %v", tt.column, err)
		}
		if got != tt.want {
			t.Errorf("ColumnKind(%q) = %v, want %v", tt.column, got, tt.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"42", true},
		{" 2.0 ", true},
		{"-.5", true},
		{"+3.", true},
		{"6.02e23", true},
		{"1,000", false},
		{"0x10", false},
		{"Inf", false},
		{"", false},
		{"1 2", false},
		{"1e700000000", false},
		{"-1e700000000", false},
		{"1e9999999999", false},
	}
	for _, tt := range tests {
		if _, ok := ParseDecimal(tt.in); ok != tt.ok {
			t.Errorf("ParseDecimal(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
