package table

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching. The typed errors below report
// themselves as these so callers can branch on the kind without errors.As.
var (
	ErrMalformedRow    = errors.New("malformed row")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// MalformedRowError is returned by Ingest when a data line has a different
// number of fields than the header (or the first line, without a header).
type MalformedRowError struct {
	Line int // 1-based line number in the source text
	Got  int
	Want int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row at line %d: got %d fields, want %d", e.Line, e.Got, e.Want)
}

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// UnknownColumnError is returned when an operation references a column the
// table does not have.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Column)
}

func (e *UnknownColumnError) Is(target error) bool { return target == ErrUnknownColumn }

// DuplicateColumnError is returned when an operation would leave two columns
// with the same name.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column %q", e.Column)
}

func (e *DuplicateColumnError) Is(target error) bool { return target == ErrDuplicateColumn }
