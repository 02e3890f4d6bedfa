package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/natefinch/atomic"
)

// WriteCSV writes t to w as RFC 4180 CSV: the header line, then every row.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.All() {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes t as CSV to path. Readers of path see either the old
// file or the complete new one, never a partial write.
func WriteCSVFile(path string, t *table.Table) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteText writes t to w as an aligned, human-readable table:
//
//	year  population  unemployment_rate
//	----  ----------  -----------------
//	2016  65648000    4.9
//
// Empty values are shown as "null".
func WriteText(w io.Writer, t *table.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	cols := t.Columns()
	rules := make([]string, len(cols))
	for i, c := range cols {
		rules[i] = strings.Repeat("-", max(len(c), 1))
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	for _, row := range t.All() {
		vals := row.Values()
		for i, v := range vals {
			if table.IsEmpty(v) {
				vals[i] = "null"
			}
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	return tw.Flush()
}
