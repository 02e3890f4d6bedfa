package table

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func mustTable(t *testing.T, columns []string, rows ...[]string) *Table {
	t.Helper()
	tbl, err := New(columns, rows)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tbl
}

func TestNew_CopiesInput(t *testing.T) {
	cols := []string{"a"}
	rows := [][]string{{"1"}}
	tbl := mustTable(t, cols, rows...)

	cols[0] = "z"
	rows[0][0] = "9"

	if got := tbl.Columns(); got[0] != "a" {
		t.Errorf("column changed through caller slice: %v", got)
	}
	if v, _ := tbl.Row(0).Get("a"); v != "1" {
		t.Errorf("value changed through caller slice: %q", v)
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	if _, err := New([]string{"a", "b"}, [][]string{{"1"}}); !errors.Is(err, ErrMalformedRow) {
		t.Errorf("short row: error = %v, want ErrMalformedRow", err)
	}
	if _, err := New([]string{"a", "a"}, nil); !errors.Is(err, ErrDuplicateColumn) {
		t.Errorf("duplicate names: error = %v, want ErrDuplicateColumn", err)
	}
}

func TestTable_AccessorsReturnCopies(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, []string{"1", "2"})

	tbl.Columns()[0] = "x"
	tbl.Row(0).Values()[0] = "x"
	tbl.Records()[0][1] = "x"
	tbl.Row(0).Map()["a"] = "x"

	want := mustTable(t, []string{"a", "b"}, []string{"1", "2"})
	if !tbl.Equal(want) {
		t.Errorf("table mutated through accessor: %v", tbl.Records())
	}
}

func TestTable_Head(t *testing.T) {
	tbl := mustTable(t, []string{"n"}, []string{"1"}, []string{"2"}, []string{"3"})

	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{2, 2},
		{3, 3},
		{10, 3},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := tbl.Head(tt.n).Len(); got != tt.want {
			t.Errorf("Head(%d).Len() = %d, want %d", tt.n, got, tt.want)
		}
	}

	if v, _ := tbl.Head(2).Row(1).Get("n"); v != "2" {
		t.Errorf("Head(2) row 1 = %q, want %q", v, "2")
	}
}

func TestTable_All(t *testing.T) {
	tbl := mustTable(t, []string{"n"}, []string{"a"}, []string{"b"}, []string{"c"})

	var seen []string
	for i, row := range tbl.All() {
		v, _ := row.Get("n")
		seen = append(seen, v)
		if i == 1 {
			break
		}
	}
	if !slices.Equal(seen, []string{"a", "b"}) {
		t.Errorf("All() with break = %v, want [a b]", seen)
	}
}

func TestTable_Column(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, []string{"1", "2"}, []string{"3", "4"})

	got, err := tbl.Column("b")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if !slices.Equal(got, []string{"2", "4"}) {
		t.Errorf("Column(b) = %v, want [2 4]", got)
	}
	if _, err := tbl.Column("c"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Column(c) error = %v, want ErrUnknownColumn", err)
	}
}

func TestTable_HasColumn(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, []string{"1", "2"})

	for name, want := range map[string]bool{"a": true, "b": true, "c": false, "": false, "A": false} {
		if got := tbl.HasColumn(name); got != want {
			t.Errorf("HasColumn(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTable_ConcurrentReaders(t *testing.T) {
	tbl, err := Ingest(ukSample, ',', true)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	want, _ := SortDescendingBy(tbl, "year")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := Project(tbl, []string{"year", "population"})
			if err != nil {
				t.Errorf("Project() error = %v", err)
				return
			}
			if _, err := Rename(p, RenameMap{"year": "y"}); err != nil {
				t.Errorf("Rename() error = %v", err)
			}
			s, err := SortDescendingBy(tbl, "year")
			if err != nil || !s.Equal(want) {
				t.Errorf("SortDescendingBy() = %v, %v", s.Records(), err)
			}
		}()
	}
	wg.Wait()
}
