package core

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/tabproj/internal/table"
)

func TestWriteCSV_QuotesWhenNeeded(t *testing.T) {
	tbl, err := table.New([]string{"name", "note"}, [][]string{
		{"a", "plain"},
		{"b", "has,comma"},
		{"c", `say "hi"`},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "name,note\na,plain\nb,\"has,comma\"\nc,\"say \"\"hi\"\"\"\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV_RoundTripsSimpleTables(t *testing.T) {
	src := "a,b\n1,x\n2,\n"
	tbl, err := table.Ingest(src, ',', true)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.String() != src {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), src)
	}
}

func TestWriteCSVFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, _ := table.New([]string{"x"}, [][]string{{"1"}})
	if err := WriteCSVFile(path, tbl); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x\n1\n" {
		t.Errorf("file = %q, want %q", data, "x\n1\n")
	}
}

func TestWriteText(t *testing.T) {
	tbl, _ := table.New(
		[]string{"year", "rate"},
		[][]string{{"2016", "4.9"}, {"1855", ""}},
	)

	var buf bytes.Buffer
	if err := WriteText(&buf, tbl); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	want := "year  rate\n" +
		"----  ----\n" +
		"2016  4.9\n" +
		"1855  null\n"
	if buf.String() != want {
		t.Errorf("WriteText() =\n%s\nwant\n%s", buf.String(), want)
	}
}
