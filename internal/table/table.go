// Package table implements an immutable in-memory table of named text
// columns, plus the ingest, projection, rename and sort operations that
// build new tables from existing ones.
//
// A *Table is never modified after construction. Every operation returns a
// fresh value, so a single table can be read from many goroutines without
// locking:
//
//	t, err := table.Ingest(src, ',', true)
//	t, err = table.Project(t, []string{"Description", "Unemployment rate"})
//	t, err = table.Rename(t, table.RenameMap{"Description": "year"})
//	t, err = table.SortDescendingBy(t, "year")
//	for i, row := range t.Head(5).All() { ... }
package table

import (
	"iter"
	"slices"
)

// Table is an ordered set of uniquely named columns and an ordered set of
// rows. Every row holds exactly one value per column, in column order.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a table from column names and positional rows. The inputs are
// copied. Column names must be unique and every row must have len(columns)
// values.
func New(columns []string, rows [][]string) (*Table, error) {
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, &MalformedRowError{Line: i + 1, Got: len(r), Want: len(columns)}
		}
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = slices.Clone(r)
	}
	return build(slices.Clone(columns), cp)
}

// build takes ownership of columns and rows.
func build(columns []string, rows [][]string) (*Table, error) {
	idx, err := indexColumns(columns)
	if err != nil {
		return nil, err
	}
	return &Table{columns: columns, index: idx, rows: rows}, nil
}

func indexColumns(columns []string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; dup {
			return nil, &DuplicateColumnError{Column: c}
		}
		idx[c] = i
	}
	return idx, nil
}

// Columns returns a copy of the column names in declared order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns the i-th row. It panics if i is out of range, like a slice.
func (t *Table) Row(i int) Row {
	return Row{index: t.index, values: t.rows[i]}
}

// All iterates over the rows in order.
func (t *Table) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i := range t.rows {
			if !yield(i, t.Row(i)) {
				return
			}
		}
	}
}

// Records returns a copy of all rows as positional string slices.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// Column returns a copy of every value in the named column.
func (t *Table) Column(name string) ([]string, error) {
	pos, ok := t.index[name]
	if !ok {
		return nil, &UnknownColumnError{Column: name}
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[pos]
	}
	return out, nil
}

// Head returns a table holding the first n rows. n larger than Len returns
// every row; a negative n returns none.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, len(t.rows)))
	return &Table{columns: t.columns, index: t.index, rows: t.rows[:n:n]}
}

// Equal reports whether two tables have the same columns and the same rows
// in the same order.
func (t *Table) Equal(o *Table) bool {
	if !slices.Equal(t.columns, o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.rows {
		if !slices.Equal(t.rows[i], o.rows[i]) {
			return false
		}
	}
	return true
}

// Row is a read-only view of one table row.
type Row struct {
	index  map[string]int
	values []string
}

// Get returns the value of the named column.
func (r Row) Get(name string) (string, bool) {
	pos, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.values[pos], true
}

// Values returns a copy of the row's values in column order.
func (r Row) Values() []string {
	return slices.Clone(r.values)
}

// Map returns the row as a column name to value map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.index))
	for name, pos := range r.index {
		m[name] = r.values[pos]
	}
	return m
}
