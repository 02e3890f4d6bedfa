package table

// Project returns a table holding only the named columns, in the requested
// order. Rows keep their original order. An absent name fails with
// *UnknownColumnError; naming a column twice fails with
// *DuplicateColumnError.
func Project(t *Table, columns []string) (*Table, error) {
	src := make([]int, len(columns))
	for i, name := range columns {
		pos, ok := t.index[name]
		if !ok {
			return nil, &UnknownColumnError{Column: name}
		}
		src[i] = pos
	}

	out := make([]string, len(columns))
	copy(out, columns)
	idx, err := indexColumns(out)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		nr := make([]string, len(src))
		for j, pos := range src {
			nr[j] = r[pos]
		}
		rows[i] = nr
	}
	return &Table{columns: out, index: idx, rows: rows}, nil
}
