package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeTx records the statements and rows sent to it. Methods the store
// does not call are left to the embedded nil interface.
type fakeTx struct {
	pgx.Tx

	execs      []string
	copyTable  pgx.Identifier
	copyCols   []string
	copied     [][]any
	committed  bool
	rolledBack bool

	execErr error
	copyErr error
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeTx) CopyFrom(_ context.Context, name pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	f.copyTable = name
	f.copyCols = cols
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.copied = append(f.copied, vals)
	}
	if err := src.Err(); err != nil {
		return 0, err
	}
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	return int64(len(f.copied)), nil
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func ukTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.Ingest("year,population,label\n2016,65648000,a\n1855,,b\n", ',', true)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	return tbl
}

func TestSchema(t *testing.T) {
	cols, err := Schema(ukTable(t))
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	want := []Column{{"year", "NUMERIC"}, {"population", "NUMERIC"}, {"label", "TEXT"}}
	for i, c := range want {
		if cols[i] != c {
			t.Errorf("cols[%d] = %+v, want %+v", i, cols[i], c)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL("uk", []Column{{"year", "NUMERIC"}, {`odd "name"`, "TEXT"}})
	want := `CREATE TABLE "uk" ("year" NUMERIC, "odd ""name""" TEXT)`
	if got != want {
		t.Errorf("CreateTableSQL() = %s, want %s", got, want)
	}
}

func TestStore_Publish(t *testing.T) {
	tx := &fakeTx{}
	s := New(&fakeDB{tx: tx})

	n, err := s.Publish(context.Background(), "uk_macro", ukTable(t))
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Publish() = %d, want 2", n)
	}

	if len(tx.execs) != 2 ||
		tx.execs[0] != `DROP TABLE IF EXISTS "uk_macro"` ||
		!strings.HasPrefix(tx.execs[1], `CREATE TABLE "uk_macro"`) {
		t.Errorf("execs = %q", tx.execs)
	}
	if tx.copyTable[0] != "uk_macro" || strings.Join(tx.copyCols, ",") != "year,population,label" {
		t.Errorf("copy target = %v %v", tx.copyTable, tx.copyCols)
	}
	if !tx.committed {
		t.Error("transaction not committed")
	}

	first := tx.copied[0]
	if year, ok := first[0].(pgtype.Numeric); !ok || !year.Valid || year.Int.Int64() != 2016 {
		t.Errorf("year = %#v, want numeric 2016", first[0])
	}
	if label, ok := first[2].(pgtype.Text); !ok || label.String != "a" {
		t.Errorf("label = %#v, want text a", first[2])
	}
	if pop := tx.copied[1][1].(pgtype.Numeric); pop.Valid {
		t.Errorf("empty population = %#v, want NULL", pop)
	}
}

func TestStore_PublishErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		s := New(&fakeDB{tx: &fakeTx{}})
		for _, name := range []string{"", "1abc", "drop table;", "a-b", strings.Repeat("x", 64)} {
			if _, err := s.Publish(context.Background(), name, ukTable(t)); !errors.Is(err, ErrInvalidTableName) {
				t.Errorf("Publish(%q) error = %v, want ErrInvalidTableName", name, err)
			}
		}
	})

	t.Run("begin fails", func(t *testing.T) {
		s := New(&fakeDB{beginErr: errors.New("dial tcp: connection refused")})
		_, err := s.Publish(context.Background(), "uk", ukTable(t))
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("Publish() error = %v", err)
		}
	})

	t.Run("copy fails rolls back", func(t *testing.T) {
		tx := &fakeTx{copyErr: errors.New("boom")}
		s := New(&fakeDB{tx: tx})
		if _, err := s.Publish(context.Background(), "uk", ukTable(t)); err == nil {
			t.Fatal("Publish() expected error")
		}
		if tx.committed || !tx.rolledBack {
			t.Errorf("committed = %v, rolledBack = %v, want rollback only", tx.committed, tx.rolledBack)
		}
	})

	t.Run("exec fails", func(t *testing.T) {
		tx := &fakeTx{execErr: errors.New("permission denied")}
		s := New(&fakeDB{tx: tx})
		_, err := s.Publish(context.Background(), "uk", ukTable(t))
		if err == nil || !strings.HasPrefix(err.Error(), "drop uk") {
			t.Errorf("Publish() error = %v, want drop failure", err)
		}
	})
}
