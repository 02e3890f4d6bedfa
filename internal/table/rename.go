package table

import (
	"slices"
	"sort"
)

// RenameMap maps an existing column name to its new name.
type RenameMap map[string]string

// Rename applies every entry of m at once, so swaps like {"a": "b", "b": "a"}
// are allowed. A key that is not a current column fails with
// *UnknownColumnError. If the renamed columns would not be unique it fails
// with *DuplicateColumnError naming the first collision in column order.
func Rename(t *Table, m RenameMap) (*Table, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := t.index[k]; !ok {
			return nil, &UnknownColumnError{Column: k}
		}
	}

	columns := slices.Clone(t.columns)
	for i, c := range columns {
		if to, ok := m[c]; ok {
			columns[i] = to
		}
	}
	idx, err := indexColumns(columns)
	if err != nil {
		return nil, err
	}

	// Row values are shared; neither table can modify them.
	return &Table{columns: columns, index: idx, rows: t.rows}, nil
}
