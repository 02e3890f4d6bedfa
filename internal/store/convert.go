package store

// convert.go turns table cells into pgtype values for COPY.
//
// Both converters return Valid=false for blank cells so they reach the
// database as NULL.

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ToPgText converts a cell to pgtype.Text. The value is kept as is; only
// blank cells become NULL.
func ToPgText(s string) pgtype.Text {
	if table.IsEmpty(s) {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgNumeric converts a decimal cell to pgtype.Numeric without rounding.
// Scientific notation is expanded into the digits and exponent pgtype
// stores, since pgtype.Numeric.Scan does not accept it. Blank or
// non-decimal cells return invalid.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	mantissa, expPart, _ := strings.Cut(strings.ToLower(s), "e")
	var exp int64
	if expPart != "" {
		var err error
		if exp, err = strconv.ParseInt(expPart, 10, 32); err != nil {
			return pgtype.Numeric{Valid: false}
		}
	}

	whole, frac, _ := strings.Cut(mantissa, ".")
	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}

	exp -= int64(len(frac))
	if exp < math.MinInt32 || exp > math.MaxInt32 {
		return pgtype.Numeric{Valid: false}
	}
	return pgtype.Numeric{Int: n, Exp: int32(exp), Valid: true}
}
