package dbexport

import (
	"context"
	"database/sql"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/marcboeker/go-duckdb"

	"tabledump/config"
)

func TestDuckDBExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.duckdb")
	db, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER, name VARCHAR, active BOOLEAN)`,
		`INSERT INTO users VALUES (1, 'Alice', true), (2, 'Bob', true), (3, 'Carol', false)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	db.Close()

	b, err := Open(context.Background(), config.Database{Type: config.DuckDB, Database: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	dir := t.TempDir()
	w := NewWriter(b, dir)
	table := config.Table{Name: "users", Columns: []string{"id", "name"}, Where: "active ORDER BY id"}
	if _, err := w.ExportSQL(context.Background(), table); err != nil {
		t.Fatal(err)
	}
	want := `INSERT INTO users (id,name) VALUES (1,'Alice'),(2,'Bob');`
	if got := readFile(t, filepath.Join(dir, "users.sql")); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestDuckDBDecimalExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.duckdb")
	db, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE prices (id INTEGER, amount DECIMAL(10,2), big HUGEINT)`,
		`INSERT INTO prices VALUES (1, 12.34, 170141183460469231731687303715884105727), (2, -0.50, NULL), (3, 0, 0), (4, NULL, NULL)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	db.Close()

	b, err := Open(context.Background(), config.Database{Type: config.DuckDB, Database: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	dir := t.TempDir()
	w := NewWriter(b, dir)
	table := config.Table{Name: "prices", Columns: []string{"id", "amount", "big"}, Where: "1=1 ORDER BY id"}
	if _, err := w.ExportJSON(context.Background(), table); err != nil {
		t.Fatal(err)
	}
	want := `[{"id":1,"amount":12.34,"big":170141183460469231731687303715884105727},` +
		`{"id":2,"amount":-0.50,"big":null},` +
		`{"id":3,"amount":0.00,"big":0},` +
		`{"id":4,"amount":null,"big":null}]`
	if got := readFile(t, filepath.Join(dir, "prices.json")); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestDuckDBDecimalText(t *testing.T) {
	cases := []struct {
		value int64
		scale uint8
		want  string
	}{
		{1234, 2, "12.34"},
		{-50, 2, "-0.50"},
		{5, 3, "0.005"},
		{0, 2, "0.00"},
		{42, 0, "42"},
	}
	for _, tc := range cases {
		d := duckdb.Decimal{Width: 10, Scale: tc.scale, Value: big.NewInt(tc.value)}
		if got := duckdbDecimalText(d); got != tc.want {
			t.Errorf("duckdbDecimalText(%d, scale %d) = %q, want %q", tc.value, tc.scale, got, tc.want)
		}
	}
}
