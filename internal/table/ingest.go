package table

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidSeparator is returned by Ingest for a separator that cannot
// delimit fields within a line.
var ErrInvalidSeparator = errors.New("invalid separator")

// Ingest parses separator-delimited text into a table of text values.
//
// Lines end in "\n"; a trailing "\r" is dropped. Zero-length lines are
// skipped. Fields are split on sep with no quoting or escaping, so a value
// can never contain the separator. When hasHeader is false the columns are
// named col0, col1, ... and the first line fixes the row width.
//
// A line whose field count differs from the width fails with
// *MalformedRowError. Repeated header names fail with *DuplicateColumnError.
// Empty source text yields an empty table.
func Ingest(source string, sep rune, hasHeader bool) (*Table, error) {
	if sep == '\n' || sep == '\r' || sep == 0 || sep == utf8.RuneError {
		return nil, ErrInvalidSeparator
	}
	sepStr := string(sep)

	var (
		columns []string
		rows    [][]string
	)

	lineNo := 0
	for line := range strings.SplitSeq(source, "\n") {
		lineNo++
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, sepStr)

		if columns == nil {
			if hasHeader {
				columns = fields
				continue
			}
			columns = positionalNames(len(fields))
		}

		if len(fields) != len(columns) {
			return nil, &MalformedRowError{Line: lineNo, Got: len(fields), Want: len(columns)}
		}
		rows = append(rows, fields)
	}

	if columns == nil {
		columns = []string{}
	}
	return build(columns, rows)
}

func positionalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "col" + strconv.Itoa(i)
	}
	return names
}
