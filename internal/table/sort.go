package table

import (
	"cmp"
	"math/big"
	"regexp"
	"slices"
	"strings"
)

// decimalRegex matches the decimal numbers that make a column sort
// numerically: integers, fractions and scientific notation.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Kind is the comparison type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// IsEmpty reports whether a value counts as missing for sorting.
func IsEmpty(v string) bool {
	return strings.TrimSpace(v) == ""
}

// decimalPrec keeps integers up to roughly 75 digits exact.
const decimalPrec = 256

// ParseDecimal parses v as a decimal number. Surrounding space is ignored.
// NaN, infinities, hex forms and values whose exponent overflows a
// big.Float are not decimals.
func ParseDecimal(v string) (*big.Float, bool) {
	v = strings.TrimSpace(v)
	if !decimalRegex.MatchString(v) {
		return nil, false
	}
	f, _, err := big.ParseFloat(v, 10, decimalPrec, big.ToNearestEven)
	if err != nil || f.IsInf() {
		return nil, false
	}
	return f, true
}

// ColumnKind reports how the named column compares: KindNumeric if every
// non-empty value is a decimal number, otherwise KindText. A column with no
// non-empty values is KindText.
func ColumnKind(t *Table, column string) (Kind, error) {
	values, err := t.Column(column)
	if err != nil {
		return KindText, err
	}
	return kindOf(values), nil
}

func kindOf(values []string) Kind {
	seen := false
	for _, v := range values {
		if IsEmpty(v) {
			continue
		}
		if _, ok := ParseDecimal(v); !ok {
			return KindText
		}
		seen = true
	}
	if !seen {
		return KindText
	}
	return KindNumeric
}

// sortKey is a precomputed per-row key so parsing happens once per row.
type sortKey struct {
	row   int
	empty bool
	num   *big.Float
	text  string
}

// SortDescendingBy returns a table with the rows ordered by the named
// column, largest first. The column compares numerically when ColumnKind
// says so and byte-wise otherwise. Empty values go last. Rows with equal
// keys keep their relative order. An absent column fails with
// *UnknownColumnError.
func SortDescendingBy(t *Table, column string) (*Table, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	kind := kindOf(values)

	keys := make([]sortKey, len(values))
	for i, v := range values {
		k := sortKey{row: i, empty: IsEmpty(v), text: v}
		if kind == KindNumeric && !k.empty {
			k.num, _ = ParseDecimal(v)
		}
		keys[i] = k
	}

	slices.SortStableFunc(keys, func(a, b sortKey) int {
		switch {
		case a.empty && b.empty:
			return 0
		case a.empty:
			return 1
		case b.empty:
			return -1
		}
		if kind == KindNumeric {
			return b.num.Cmp(a.num)
		}
		return cmp.Compare(b.text, a.text)
	})

	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = t.rows[k.row]
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}, nil
}
