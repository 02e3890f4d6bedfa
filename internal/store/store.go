// Package store publishes result tables to PostgreSQL.
//
// A published table is replaced as a whole inside one transaction: the old
// table is dropped, a new one is created with one NUMERIC or TEXT column per
// result column, and every row is loaded with COPY.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/jackc/pgx/v5"
)

// ErrInvalidTableName is returned for table names that are not plain
// identifiers.
var ErrInvalidTableName = errors.New("invalid table name")

// tableNameRegex accepts unquoted-style identifiers up to the
// PostgreSQL limit of 63 bytes.
var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store writes tables to a PostgreSQL database.
type Store struct {
	db DB
}

// New creates a Store over db.
func New(db DB) *Store {
	return &Store{db: db}
}

// Column describes one column of a published table.
type Column struct {
	Name string
	Type string // NUMERIC or TEXT
}

// Schema returns the column layout Publish would create for t: NUMERIC for
// columns whose non-empty values are all decimal, TEXT otherwise.
func Schema(t *table.Table) ([]Column, error) {
	cols := t.Columns()
	out := make([]Column, len(cols))
	for i, name := range cols {
		kind, err := table.ColumnKind(t, name)
		if err != nil {
			return nil, err
		}
		typ := "TEXT"
		if kind == table.KindNumeric {
			typ = "NUMERIC"
		}
		out[i] = Column{Name: name, Type: typ}
	}
	return out, nil
}

// CreateTableSQL returns the CREATE TABLE statement for name and cols.
func CreateTableSQL(name string, cols []Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pgx.Identifier{name}.Sanitize(), strings.Join(defs, ", "))
}

// Publish replaces table name with the contents of t and returns the number
// of rows copied.
func (s *Store) Publish(ctx context.Context, name string, t *table.Table) (int64, error) {
	if !tableNameRegex.MatchString(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}

	cols, err := Schema(t)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident := pgx.Identifier{name}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(name, cols)); err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	n, err := tx.CopyFrom(ctx, ident, t.Columns(), rowSource(t, cols))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// rowSource feeds the rows of t to COPY, converting each cell by its
// column type.
func rowSource(t *table.Table, cols []Column) pgx.CopyFromSource {
	return pgx.CopyFromSlice(t.Len(), func(i int) ([]any, error) {
		row := t.Row(i).Values()
		vals := make([]any, len(row))
		for j, v := range row {
			if cols[j].Type == "NUMERIC" {
				n := ToPgNumeric(v)
				if !n.Valid && !table.IsEmpty(v) {
					return nil, fmt.Errorf("row %d column %q: %q is not a decimal", i+1, cols[j].Name, v)
				}
				vals[j] = n
			} else {
				vals[j] = ToPgText(v)
			}
		}
		return vals, nil
	})
}
